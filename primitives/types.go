// Package primitives holds the small, allocation-free value types shared by
// the netparser and minerid packages: hashes, heights, outpoints, and the
// shape predicates used to sanity-check public keys and signatures before
// they ever reach libsv/go-bk/bec.
package primitives

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/libsv/go-bt/v2/chainhash"
)

// Hash256 is the same 32-byte double-SHA256 handle the teacher uses
// throughout model/Block.go, rather than a pointer graph of hash objects.
type Hash256 = chainhash.Hash

// Height is a block height. int32 matches the chain's consensus-coded
// height range and the teacher's model.Block.Height field.
type Height int32

// Outpoint identifies a transaction output: (txid, index).
type Outpoint struct {
	TxID  Hash256
	Index uint32
}

// CompressedPubKey is an opaque 33-byte secp256k1 public key in compressed
// form (0x02/0x03 prefix). Shape is validated with IsCompressedKey before
// construction; the actual curve math is delegated to libsv/go-bk/bec.
type CompressedPubKey [33]byte

// DerSignature is a DER-encoded ECDSA signature, stored as raw bytes since
// its length varies (69-72 bytes is typical, but DER permits other lengths).
type DerSignature []byte

// IsCompressedKey reports whether b has the shape of a compressed secp256k1
// public key: exactly 33 bytes, leading byte 0x02 or 0x03.
func IsCompressedKey(b []byte) bool {
	return len(b) == 33 && (b[0] == 0x02 || b[0] == 0x03)
}

// IsDERSignature reports whether b has the shape of a DER-encoded ECDSA
// signature: a leading SEQUENCE tag (0x30) and a length byte matching the
// remaining slice, within the range real secp256k1 signatures occupy.
func IsDERSignature(b []byte) bool {
	if len(b) < 69 || len(b) > 72 {
		return false
	}
	if b[0] != 0x30 {
		return false
	}
	return int(b[1]) == len(b)-2
}

// NewCompressedPubKey validates and copies b into a CompressedPubKey.
func NewCompressedPubKey(b []byte) (CompressedPubKey, bool) {
	var k CompressedPubKey
	if !IsCompressedKey(b) {
		return k, false
	}
	copy(k[:], b)
	return k, true
}

func (k CompressedPubKey) Bytes() []byte {
	out := make([]byte, len(k))
	copy(out, k[:])
	return out
}

// MarshalJSON/UnmarshalJSON render a CompressedPubKey as the same hex string
// the coinbase-document wire format uses, so kvstore persistence round-trips
// through the same representation as the network/document layer.
func (k CompressedPubKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(k[:]))
}

func (k *CompressedPubKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*k = CompressedPubKey{}
		return nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if !IsCompressedKey(raw) {
		return fmt.Errorf("not a compressed public key: %q", s)
	}
	copy(k[:], raw)
	return nil
}

// MarshalJSON/UnmarshalJSON render a DerSignature as a hex string.
func (s DerSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s))
}

func (s *DerSignature) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	if str == "" {
		*s = nil
		return nil
	}
	raw, err := hex.DecodeString(str)
	if err != nil {
		return err
	}
	*s = DerSignature(raw)
	return nil
}
