package minerid

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

// RevokeMid is the decoded form of a P2P "revokemid" message: a partial
// revocation of one miner-id, carried outside of a coinbase document.
// Grounded on revokemid.h/.cpp's RevokeMid class.
type RevokeMid struct {
	RevocationKey     primitives.CompressedPubKey
	MinerID           primitives.CompressedPubKey
	RevocationMessage primitives.CompressedPubKey
	Sig1              primitives.DerSignature
	Sig2              primitives.DerSignature
}

const revokeMidVersion = 0

// DecodeRevokeMid parses the wire format of §6.3: version(u32) ||
// revocationKey(33) || minerId(33) || revocationMessage(33) ||
// sig1_len(u8) || sig1 || sig2_len(u8) || sig2.
func DecodeRevokeMid(s []byte) (*RevokeMid, *errors.Error) {
	const fixedLen = 4 + 33 + 33 + 33
	if len(s) < fixedLen+2 {
		return nil, errors.NewInvalidArgumentError("revokemid message too short")
	}

	version := binary.LittleEndian.Uint32(s[0:4])
	if version != revokeMidVersion {
		return nil, errors.NewInvalidArgumentError("revokemid message has unsupported version %d", version)
	}

	revKeyBytes := s[4:37]
	minerIDBytes := s[37:70]
	revMsgBytes := s[70:103]

	revKey, ok := primitives.NewCompressedPubKey(revKeyBytes)
	if !ok {
		return nil, errors.NewInvalidArgumentError("revokemid revocationKey is not a compressed public key")
	}
	minerID, ok := primitives.NewCompressedPubKey(minerIDBytes)
	if !ok {
		return nil, errors.NewInvalidArgumentError("revokemid minerId is not a compressed public key")
	}
	revMsg, ok := primitives.NewCompressedPubKey(revMsgBytes)
	if !ok {
		return nil, errors.NewInvalidArgumentError("revokemid revocationMessage is not a compressed public key")
	}

	rest := s[fixedLen:]
	if len(rest) < 1 {
		return nil, errors.NewInvalidArgumentError("revokemid message truncated before sig1 length")
	}
	sig1Len := int(rest[0])
	if len(rest) < 1+sig1Len+1 {
		return nil, errors.NewInvalidArgumentError("revokemid message truncated in sig1")
	}
	sig1 := rest[1 : 1+sig1Len]

	rest2 := rest[1+sig1Len:]
	sig2Len := int(rest2[0])
	if len(rest2) != 1+sig2Len {
		return nil, errors.NewInvalidArgumentError("revokemid message length does not match sig1_len + sig2_len")
	}
	sig2 := rest2[1 : 1+sig2Len]

	if !primitives.IsDERSignature(sig1) {
		return nil, errors.NewInvalidArgumentError("revokemid sig1 is not DER-shaped")
	}
	if !primitives.IsDERSignature(sig2) {
		return nil, errors.NewInvalidArgumentError("revokemid sig2 is not DER-shaped")
	}

	return &RevokeMid{
		RevocationKey:     revKey,
		MinerID:           minerID,
		RevocationMessage: revMsg,
		Sig1:              primitives.DerSignature(append([]byte{}, sig1...)),
		Sig2:              primitives.DerSignature(append([]byte{}, sig2...)),
	}, nil
}

// Encode serializes a RevokeMid back to wire format.
func (m *RevokeMid) Encode() []byte {
	out := make([]byte, 0, 4+33+33+33+1+len(m.Sig1)+1+len(m.Sig2))
	var versionBuf [4]byte
	binary.LittleEndian.PutUint32(versionBuf[:], revokeMidVersion)
	out = append(out, versionBuf[:]...)
	out = append(out, m.RevocationKey.Bytes()...)
	out = append(out, m.MinerID.Bytes()...)
	out = append(out, m.RevocationMessage.Bytes()...)
	out = append(out, byte(len(m.Sig1)))
	out = append(out, m.Sig1...)
	out = append(out, byte(len(m.Sig2)))
	out = append(out, m.Sig2...)
	return out
}

// VerifySignatures checks both signatures over SHA256(hex-encoded
// revocation-target pubkey), matching revokemid.cpp's HashRevocationMessage
// (which hashes the hex-text encoding of the target key, not its raw
// bytes).
func (m *RevokeMid) VerifySignatures() bool {
	payload := []byte(hex.EncodeToString(m.RevocationMessage.Bytes()))
	return primitives.VerifySHA256(payload, m.RevocationKey, m.Sig1) &&
		primitives.VerifySHA256(payload, m.MinerID, m.Sig2)
}
