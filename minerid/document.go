// Package minerid implements the coinbase/miner-info document model, the
// miner-info block-bind reference, and the Miner-ID database state machine.
// Grounded on _examples/original_source/src/miner_id/{miner_id,miner_info_doc,
// miner_info_ref,revokemid}.cpp, reworked from UniValue/CPubKey/CKey onto
// plain Go types and github.com/libsv/go-bk/bec.
package minerid

import (
	"encoding/hex"
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

// DocForm distinguishes the two coinbase-document carriers: the document
// embedded directly in a v0.1/v0.2 coinbase output, versus the v0.3 form
// carried by a separate miner-info transaction referenced from the coinbase.
type DocForm int

const (
	FormCoinbaseEmbedded DocForm = iota
	FormMinerInfo
)

// KeySet mirrors miner_info_doc.h's key_set: a current key, the key it
// replaced, and the signature proving continuity between them.
type KeySet struct {
	Key        primitives.CompressedPubKey
	PrevKey    primitives.CompressedPubKey
	PrevKeySig primitives.DerSignature
}

// RevocationMessage mirrors miner_info_doc.h's revocation_msg.
type RevocationMessage struct {
	CompromisedMinerID    primitives.CompressedPubKey
	CompromisedMinerIDHex string // retained for the hex-string hashing payload
	Sig1                  primitives.DerSignature
	Sig2                  primitives.DerSignature
}

// DataRef is one entry of a document's optional dataRefs list.
type DataRef struct {
	BrfcIDs  []string
	TxID     primitives.Hash256
	Vout     uint32
	Compress string
}

// VCtx is the v0.1/v0.2 "validity context" pointing at the transaction that
// funded the coinbase document's key rotation.
type VCtx struct {
	TxID    primitives.Hash256
	TxIDHex string
	Vout    uint32
}

// CoinbaseDocument is the parsed, structurally- and cryptographically-valid
// form of a coinbase/miner-info document. Grounded on miner_info_doc.h's
// miner_info_doc class.
type CoinbaseDocument struct {
	Version string
	Height  primitives.Height

	MinerID KeySet

	HasRevocationKeys bool // v0.3 only
	RevocationKeys    KeySet

	RevocationMessage *RevocationMessage
	MinerContact      json.RawMessage
	DataRefs          []DataRef
	VCtx              *VCtx

	raw []byte
}

// Raw returns the document's canonical JSON bytes exactly as received — the
// payload the outer document signature is computed over.
func (d *CoinbaseDocument) Raw() []byte { return d.raw }

func docError(code errors.ERR, format string, args ...interface{}) *errors.Error {
	return errors.New(code, fmt.Sprintf(format, args...))
}

func fieldString(m map[string]json.RawMessage, name string) (value string, present, isString bool) {
	raw, ok := m[name]
	if !ok {
		return "", false, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, false
	}
	return value, true, true
}

func fieldNumber(m map[string]json.RawMessage, name string) (value float64, present, isNumber bool) {
	raw, ok := m[name]
	if !ok {
		return 0, false, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, true, false
	}
	return value, true, true
}

func fieldObject(m map[string]json.RawMessage, name string) (value map[string]json.RawMessage, present, isObject bool) {
	raw, ok := m[name]
	if !ok {
		return nil, false, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, true, false
	}
	return value, true, true
}

type requiredField struct {
	name   string
	number bool
}

var requiredFieldsCoinbaseEmbedded = []requiredField{
	{"version", false},
	{"height", true},
	{"minerId", false},
	{"prevMinerId", false},
	{"prevMinerIdSig", false},
}

var requiredFieldsMinerInfo = []requiredField{
	{"version", false},
	{"height", true},
	{"minerId", false},
	{"prevMinerId", false},
	{"prevMinerIdSig", false},
	{"revocationKey", false},
	{"prevRevocationKey", false},
	{"prevRevocationKeySig", false},
}

// ParseCoinbaseDocument runs the full static-document validation algorithm:
// JSON well-formedness, required-field presence/typing, version and height
// checks, key/signature shape checks, the prevMinerIdSig and (v0.3)
// prevRevocationKeySig verifications, the optional revocation-message
// verification, and finally the outer document signature under minerId.
// outerSig is the signature pushed alongside the document in the coinbase
// (or miner-info transaction) output script.
func ParseCoinbaseDocument(raw []byte, form DocForm, outerSig primitives.DerSignature) (*CoinbaseDocument, *errors.Error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.New(errors.ERR_DOC_ILL_FORMED_JSON, "coinbase document is not valid JSON", err)
	}

	required := requiredFieldsCoinbaseEmbedded
	if form == FormMinerInfo {
		required = requiredFieldsMinerInfo
	}

	for _, rf := range required {
		if _, present := fields[rf.name]; !present {
			return nil, docError(errors.ERR_DOC_MISSING_FIELDS, "missing required field %q", rf.name)
		}
	}
	for _, rf := range required {
		if rf.number {
			if _, _, ok := fieldNumber(fields, rf.name); !ok {
				return nil, docError(errors.ERR_DOC_INVALID_NUMBER_TYPE, "field %q is not a number", rf.name)
			}
		} else {
			if _, _, ok := fieldString(fields, rf.name); !ok {
				return nil, docError(errors.ERR_DOC_INVALID_STRING_TYPE, "field %q is not a string", rf.name)
			}
		}
	}

	version, _, _ := fieldString(fields, "version")
	switch form {
	case FormCoinbaseEmbedded:
		if version != "0.1" && version != "0.2" {
			return nil, docError(errors.ERR_DOC_UNSUPPORTED_VERSION, "unsupported coinbase document version %q", version)
		}
	case FormMinerInfo:
		if version != "0.3" {
			return nil, docError(errors.ERR_DOC_UNSUPPORTED_VERSION, "unsupported miner-info document version %q", version)
		}
	}

	heightF, _, _ := fieldNumber(fields, "height")
	height := primitives.Height(int32(heightF))
	if height <= 0 {
		return nil, docError(errors.ERR_DOC_INVALID_HEIGHT, "height %d is not positive", height)
	}

	minerIDHex, _, _ := fieldString(fields, "minerId")
	minerIDBytes, err := hex.DecodeString(minerIDHex)
	if err != nil || !primitives.IsCompressedKey(minerIDBytes) {
		return nil, docError(errors.ERR_DOC_INVALID_MINER_ID, "minerId is not a compressed public key")
	}
	minerID, _ := primitives.NewCompressedPubKey(minerIDBytes)

	prevMinerIDHex, _, _ := fieldString(fields, "prevMinerId")
	prevMinerIDBytes, err := hex.DecodeString(prevMinerIDHex)
	if err != nil || !primitives.IsCompressedKey(prevMinerIDBytes) {
		return nil, docError(errors.ERR_DOC_INVALID_PREV_MINER_ID, "prevMinerId is not a compressed public key")
	}
	prevMinerID, _ := primitives.NewCompressedPubKey(prevMinerIDBytes)

	prevMinerIDSigHex, _, _ := fieldString(fields, "prevMinerIdSig")
	prevMinerIDSig, err := hex.DecodeString(prevMinerIDSigHex)
	if err != nil || !primitives.IsDERSignature(prevMinerIDSig) {
		return nil, docError(errors.ERR_DOC_INVALID_PREV_MINER_ID_SIG, "prevMinerIdSig is not DER-shaped")
	}

	var vctx *VCtx
	if form == FormCoinbaseEmbedded {
		vctxObj, present, isObject := fieldObject(fields, "vctx")
		if !present || !isObject {
			return nil, docError(errors.ERR_DOC_MISSING_FIELDS, "missing or malformed vctx object")
		}
		vctxTxidHex, _, ok := fieldString(vctxObj, "txId")
		if !ok {
			return nil, docError(errors.ERR_DOC_INVALID_STRING_TYPE, "vctx.txId is not a string")
		}
		vctxTxidBytes, err := hex.DecodeString(vctxTxidHex)
		if err != nil || len(vctxTxidBytes) != 32 {
			return nil, docError(errors.ERR_DOC_INVALID_STRING_TYPE, "vctx.txId is not a 32-byte hash")
		}
		vctxVoutF, _, ok := fieldNumber(vctxObj, "vout")
		if !ok {
			return nil, docError(errors.ERR_DOC_INVALID_NUMBER_TYPE, "vctx.vout is not a number")
		}
		var txid primitives.Hash256
		copy(txid[:], vctxTxidBytes)
		vctx = &VCtx{TxID: txid, TxIDHex: vctxTxidHex, Vout: uint32(vctxVoutF)}
	}

	// Step 6: verify prevMinerIdSig over the version-specific payload.
	var prevSigPayload []byte
	switch version {
	case "0.1":
		prevSigPayload = []byte(prevMinerIDHex + minerIDHex + vctx.TxIDHex)
	case "0.2":
		prevSigPayload = append(append(append([]byte{}, prevMinerIDBytes...), minerIDBytes...), mustHexDecode(vctx.TxIDHex)...)
	case "0.3":
		prevSigPayload = append(append([]byte{}, prevMinerIDBytes...), minerIDBytes...)
	}
	if !primitives.VerifySHA256(prevSigPayload, prevMinerID, prevMinerIDSig) {
		return nil, docError(errors.ERR_DOC_PREV_MINER_ID_SIG_VERIFICATION_FAILED, "prevMinerIdSig verification failed")
	}

	doc := &CoinbaseDocument{
		Version: version,
		Height:  height,
		MinerID: KeySet{
			Key:        minerID,
			PrevKey:    prevMinerID,
			PrevKeySig: primitives.DerSignature(prevMinerIDSig),
		},
		VCtx: vctx,
		raw:  raw,
	}

	// Step 7: v0.3 additionally verifies prevRevocationKeySig.
	if form == FormMinerInfo {
		revKeyHex, _, _ := fieldString(fields, "revocationKey")
		revKeyBytes, err := hex.DecodeString(revKeyHex)
		if err != nil || !primitives.IsCompressedKey(revKeyBytes) {
			return nil, docError(errors.ERR_DOC_INVALID_REVOCATION_KEY, "revocationKey is not a compressed public key")
		}
		revKey, _ := primitives.NewCompressedPubKey(revKeyBytes)

		prevRevKeyHex, _, _ := fieldString(fields, "prevRevocationKey")
		prevRevKeyBytes, err := hex.DecodeString(prevRevKeyHex)
		if err != nil || !primitives.IsCompressedKey(prevRevKeyBytes) {
			return nil, docError(errors.ERR_DOC_INVALID_PREV_REVOCATION_KEY, "prevRevocationKey is not a compressed public key")
		}
		prevRevKey, _ := primitives.NewCompressedPubKey(prevRevKeyBytes)

		prevRevKeySigHex, _, _ := fieldString(fields, "prevRevocationKeySig")
		prevRevKeySig, err := hex.DecodeString(prevRevKeySigHex)
		if err != nil || !primitives.IsDERSignature(prevRevKeySig) {
			return nil, docError(errors.ERR_DOC_INVALID_PREV_REVOCATION_KEY_SIG, "prevRevocationKeySig is not DER-shaped")
		}

		revSigPayload := append(append([]byte{}, prevRevKeyBytes...), revKeyBytes...)
		if !primitives.VerifySHA256(revSigPayload, prevRevKey, prevRevKeySig) {
			return nil, docError(errors.ERR_DOC_PREV_REV_KEY_SIG_VERIFICATION_FAILED, "prevRevocationKeySig verification failed")
		}

		doc.HasRevocationKeys = true
		doc.RevocationKeys = KeySet{
			Key:        revKey,
			PrevKey:    prevRevKey,
			PrevKeySig: primitives.DerSignature(prevRevKeySig),
		}
	}

	// Step 8: optional revocation message.
	revMsgObj, revMsgPresent, revMsgIsObject := fieldObject(fields, "revocationMessage")
	revMsgSigObj, revMsgSigPresent, revMsgSigIsObject := fieldObject(fields, "revocationMessageSig")
	if revMsgPresent != revMsgSigPresent {
		return nil, docError(errors.ERR_DOC_REV_MSG_FIELDS, "revocationMessage and revocationMessageSig must both be present or both absent")
	}
	if revMsgPresent && revMsgSigPresent {
		if !revMsgIsObject || !revMsgSigIsObject {
			return nil, docError(errors.ERR_DOC_REV_MSG_FIELDS, "revocationMessage/revocationMessageSig must be objects")
		}
		if !doc.HasRevocationKeys {
			return nil, docError(errors.ERR_DOC_REV_MSG_FIELDS, "revocationMessage requires a v0.3 document with revocation keys")
		}
		rm, rerr := parseRevocationMessage(revMsgObj, revMsgSigObj, doc.RevocationKeys.Key, doc.MinerID.Key)
		if rerr != nil {
			return nil, rerr
		}
		doc.RevocationMessage = rm
	}

	if mc, present, isObject := fieldObject(fields, "minerContact"); present && isObject {
		if b, err := json.Marshal(mc); err == nil {
			doc.MinerContact = b
		}
	}

	if refs, rerr := parseDataRefs(fields); rerr != nil {
		return nil, rerr
	} else {
		doc.DataRefs = refs
	}

	// Step 9: verify the outer document signature under minerId, over the
	// document's own canonical JSON bytes.
	if !primitives.VerifySHA256(raw, minerID, outerSig) {
		return nil, docError(errors.ERR_DOC_OUTER_SIG_VERIFICATION_FAILED, "outer document signature verification failed")
	}

	return doc, nil
}

func mustHexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// parseRevocationMessage validates a present revocationMessage/
// revocationMessageSig pair per §3.2 I-CBD-6: both sig1 (under the
// revocation key) and sig2 (under the current minerId) verify over
// SHA-256 of the compromised id's hex-encoded ASCII representation —
// mirrored from revokemid.cpp's HashRevocationMessage, which hashes the
// hex-text encoding of the target pubkey rather than its raw bytes.
func parseRevocationMessage(idDoc, sigDoc map[string]json.RawMessage, revocationKey, currentMinerID primitives.CompressedPubKey) (*RevocationMessage, *errors.Error) {
	compMinerIDHex, present, isString := fieldString(idDoc, "compromised_minerId")
	if !present || !isString {
		return nil, docError(errors.ERR_DOC_REV_MSG_FIELD, "revocationMessage.compromised_minerId missing or not a string")
	}
	compMinerIDBytes, err := hex.DecodeString(compMinerIDHex)
	if err != nil || !primitives.IsCompressedKey(compMinerIDBytes) {
		return nil, docError(errors.ERR_DOC_REV_MSG_KEY, "revocationMessage.compromised_minerId is not a compressed public key")
	}
	compMinerID, _ := primitives.NewCompressedPubKey(compMinerIDBytes)

	sig1Hex, present, isString := fieldString(sigDoc, "sig1")
	if !present || !isString {
		return nil, docError(errors.ERR_DOC_REV_MSG_SIG1, "revocationMessageSig.sig1 missing or not a string")
	}
	sig1, err := hex.DecodeString(sig1Hex)
	if err != nil || !primitives.IsDERSignature(sig1) {
		return nil, docError(errors.ERR_DOC_REV_MSG_SIG1_KEY, "revocationMessageSig.sig1 is not DER-shaped")
	}

	sig2Hex, present, isString := fieldString(sigDoc, "sig2")
	if !present || !isString {
		return nil, docError(errors.ERR_DOC_REV_MSG_SIG2, "revocationMessageSig.sig2 missing or not a string")
	}
	sig2, err := hex.DecodeString(sig2Hex)
	if err != nil || !primitives.IsDERSignature(sig2) {
		return nil, docError(errors.ERR_DOC_REV_MSG_SIG2_KEY, "revocationMessageSig.sig2 is not DER-shaped")
	}

	payload := []byte(compMinerIDHex)
	if !primitives.VerifySHA256(payload, revocationKey, sig1) {
		return nil, docError(errors.ERR_DOC_SIG1_VERIFICATION_FAILED, "revocationMessageSig.sig1 verification failed")
	}
	if !primitives.VerifySHA256(payload, currentMinerID, sig2) {
		return nil, docError(errors.ERR_DOC_SIG2_VERIFICATION_FAILED, "revocationMessageSig.sig2 verification failed")
	}

	return &RevocationMessage{
		CompromisedMinerID:    compMinerID,
		CompromisedMinerIDHex: compMinerIDHex,
		Sig1:                  primitives.DerSignature(sig1),
		Sig2:                  primitives.DerSignature(sig2),
	}, nil
}

func parseDataRefs(fields map[string]json.RawMessage) ([]DataRef, *errors.Error) {
	raw, present := fields["dataRefs"]
	if !present {
		return nil, nil
	}

	var outer struct {
		Refs []json.RawMessage `json:"refs"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, docError(errors.ERR_DOC_DATAREFS_INVALID_DATAREFS_TYPE, "dataRefs is not an object with a refs array")
	}

	refs := make([]DataRef, 0, len(outer.Refs))
	for _, item := range outer.Refs {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(item, &m); err != nil {
			return nil, docError(errors.ERR_DOC_DATAREFS_INVALID_DATAREF_TYPE, "dataRefs entry is not an object")
		}

		for _, required := range []string{"brfcIds", "txid", "vout"} {
			if _, ok := m[required]; !ok {
				return nil, docError(errors.ERR_DOC_DATAREFS_DATAREF_MISSING_FIELDS, "dataRefs entry missing %q", required)
			}
		}

		var brfcIDs []string
		if err := json.Unmarshal(m["brfcIds"], &brfcIDs); err != nil {
			return nil, docError(errors.ERR_DOC_DATAREFS_REFS_BRFCID_TYPE, "dataRefs.brfcIds is not a string array")
		}
		for _, id := range brfcIDs {
			if len(id) == 0 {
				return nil, docError(errors.ERR_BRFCID_INVALID_LENGTH, "brfcId must not be empty")
			}
		}

		txidHex, _, isString := fieldString(m, "txid")
		if !isString {
			return nil, docError(errors.ERR_DOC_DATAREFS_REFS_TXID_TYPE, "dataRefs.txid is not a string")
		}
		txidBytes, err := hex.DecodeString(txidHex)
		if err != nil || len(txidBytes) != 32 {
			return nil, docError(errors.ERR_DOC_DATAREFS_REFS_TXID_TYPE, "dataRefs.txid is not a 32-byte hash")
		}
		var txid primitives.Hash256
		copy(txid[:], txidBytes)

		voutF, _, isNumber := fieldNumber(m, "vout")
		if !isNumber {
			return nil, docError(errors.ERR_DOC_DATAREFS_REFS_VOUT_TYPE, "dataRefs.vout is not a number")
		}

		compress := ""
		if _, present := m["compress"]; present {
			compress, _, isString = fieldString(m, "compress")
			if !isString {
				return nil, docError(errors.ERR_DOC_DATAREFS_REFS_COMPRESS_TYPE, "dataRefs.compress is not a string")
			}
		}

		refs = append(refs, DataRef{
			BrfcIDs:  brfcIDs,
			TxID:     txid,
			Vout:     uint32(voutF),
			Compress: compress,
		})
	}

	return refs, nil
}
