package errors

// ERR identifies the kind of failure behind an Error. It plays the same role
// the teacher's protobuf-generated ERR enum plays, but is hand-written: the
// .proto source that generated the teacher's enum was not part of the
// retrieved pack, so there is no definition to regenerate from.
type ERR int32

const (
	ERR_UNKNOWN ERR = iota
	ERR_NOT_FOUND
	ERR_INVALID_ARGUMENT
	ERR_STORAGE
	ERR_CONFIGURATION
	ERR_PROCESSING
	ERR_SERVICE
	ERR_STATE
	ERR_CORRUPT_DATA

	// Miner-info document / P2P parsing errors (spec.md §7), one per
	// miner_info_error enumerator in
	// _examples/original_source/src/miner_id/miner_info_error.h.
	ERR_MINER_INFO_REF_NOT_FOUND
	ERR_INVALID_INSTRUCTION
	ERR_SCRIPT_VERSION_UNSUPPORTED
	ERR_INVALID_TXID_LEN
	ERR_INVALID_MMR_PBH_HASH_LEN
	ERR_INVALID_SIG_LEN
	ERR_TXID_NOT_FOUND
	ERR_DOC_OUTPUT_NOT_FOUND
	ERR_DOC_ILL_FORMED_JSON
	ERR_DOC_MISSING_FIELDS
	ERR_DOC_INVALID_STRING_TYPE
	ERR_DOC_INVALID_NUMBER_TYPE
	ERR_DOC_UNSUPPORTED_VERSION
	ERR_DOC_INVALID_HEIGHT
	ERR_DOC_INVALID_MINER_ID
	ERR_DOC_INVALID_PREV_MINER_ID
	ERR_DOC_INVALID_PREV_MINER_ID_SIG
	ERR_DOC_PREV_MINER_ID_SIG_VERIFICATION_FAILED
	ERR_DOC_INVALID_REVOCATION_KEY
	ERR_DOC_INVALID_PREV_REVOCATION_KEY
	ERR_DOC_INVALID_PREV_REVOCATION_KEY_SIG
	ERR_DOC_PREV_REV_KEY_SIG_VERIFICATION_FAILED
	ERR_DOC_REV_MSG_FIELDS
	ERR_DOC_REV_MSG_FIELD
	ERR_DOC_REV_MSG_KEY
	ERR_DOC_REV_MSG_SIG1
	ERR_DOC_REV_MSG_SIG1_KEY
	ERR_DOC_SIG1_VERIFICATION_FAILED
	ERR_DOC_REV_MSG_SIG2
	ERR_DOC_REV_MSG_SIG2_KEY
	ERR_DOC_SIG2_VERIFICATION_FAILED
	ERR_DOC_DATAREFS_INVALID_DATAREFS_TYPE
	ERR_DOC_DATAREFS_INVALID_REFS_TYPE
	ERR_DOC_DATAREFS_INVALID_DATAREF_TYPE
	ERR_DOC_DATAREFS_DATAREF_MISSING_FIELDS
	ERR_DOC_DATAREFS_INVALID_REF_FIELD_TYPE
	ERR_DOC_DATAREFS_REFS_BRFCID_TYPE
	ERR_DOC_DATAREFS_REFS_BRFCID_FIELD_TYPE
	ERR_DOC_DATAREFS_REFS_TXID_TYPE
	ERR_DOC_DATAREFS_REFS_VOUT_TYPE
	ERR_DOC_DATAREFS_REFS_COMPRESS_TYPE
	ERR_BLOCK_BIND_HASH_MISMATCH
	ERR_BLOCK_BIND_SIG_VERIFICATION_FAILED
	ERR_BRFCID_INVALID_LENGTH
	ERR_BRFCID_INVALID_CONTENT
	ERR_BRFCID_INVALID_VALUE_TYPE

	// ERR_DOC_OUTER_SIG_VERIFICATION_FAILED has no counterpart in the
	// source's miner_info_error enum, whose SetStaticCoinbaseDocument
	// checks the outer document signature but returns a generic failure
	// rather than a named enumerator for it (miner_id.cpp). Added here so
	// callers can tell it apart from the revocation-message sig failures.
	ERR_DOC_OUTER_SIG_VERIFICATION_FAILED
)

var errName = map[ERR]string{
	ERR_UNKNOWN:          "unknown",
	ERR_NOT_FOUND:        "not_found",
	ERR_INVALID_ARGUMENT: "invalid_argument",
	ERR_STORAGE:          "storage",
	ERR_CONFIGURATION:    "configuration",
	ERR_PROCESSING:       "processing",
	ERR_SERVICE:          "service",
	ERR_STATE:            "state",
	ERR_CORRUPT_DATA:     "corrupt_data",

	ERR_MINER_INFO_REF_NOT_FOUND:                   "miner_info_ref_not_found",
	ERR_INVALID_INSTRUCTION:                        "invalid_instruction",
	ERR_SCRIPT_VERSION_UNSUPPORTED:                 "script_version_unsupported",
	ERR_INVALID_TXID_LEN:                           "invalid_txid_len",
	ERR_INVALID_MMR_PBH_HASH_LEN:                   "invalid_mmr_pbh_hash_len",
	ERR_INVALID_SIG_LEN:                            "invalid_sig_len",
	ERR_TXID_NOT_FOUND:                             "txid_not_found",
	ERR_DOC_OUTPUT_NOT_FOUND:                        "doc_output_not_found",
	ERR_DOC_ILL_FORMED_JSON:                        "doc_parse_error_ill_formed_json",
	ERR_DOC_MISSING_FIELDS:                         "doc_parse_error_missing_fields",
	ERR_DOC_INVALID_STRING_TYPE:                    "doc_parse_error_invalid_string_type",
	ERR_DOC_INVALID_NUMBER_TYPE:                    "doc_parse_error_invalid_number_type",
	ERR_DOC_UNSUPPORTED_VERSION:                    "doc_parse_error_unsupported_version",
	ERR_DOC_INVALID_HEIGHT:                         "doc_parse_error_invalid_height",
	ERR_DOC_INVALID_MINER_ID:                       "doc_parse_error_invalid_miner_id",
	ERR_DOC_INVALID_PREV_MINER_ID:                  "doc_parse_error_invalid_prev_miner_id",
	ERR_DOC_INVALID_PREV_MINER_ID_SIG:              "doc_parse_error_invalid_prev_miner_id_sig",
	ERR_DOC_PREV_MINER_ID_SIG_VERIFICATION_FAILED:  "doc_parse_error_prev_miner_id_sig_verification_fail",
	ERR_DOC_INVALID_REVOCATION_KEY:                 "doc_parse_error_invalid_revocation_key",
	ERR_DOC_INVALID_PREV_REVOCATION_KEY:            "doc_parse_error_invalid_prev_revocation_key",
	ERR_DOC_INVALID_PREV_REVOCATION_KEY_SIG:        "doc_parse_error_invalid_prev_revocation_key_sig",
	ERR_DOC_PREV_REV_KEY_SIG_VERIFICATION_FAILED:   "doc_parse_error_prev_rev_key_sig_verification_fail",
	ERR_DOC_REV_MSG_FIELDS:                         "doc_parse_error_rev_msg_fields",
	ERR_DOC_REV_MSG_FIELD:                          "doc_parse_error_rev_msg_field",
	ERR_DOC_REV_MSG_KEY:                            "doc_parse_error_rev_msg_key",
	ERR_DOC_REV_MSG_SIG1:                           "doc_parse_error_rev_msg_sig1",
	ERR_DOC_REV_MSG_SIG1_KEY:                       "doc_parse_error_rev_msg_sig1_key",
	ERR_DOC_SIG1_VERIFICATION_FAILED:               "doc_parse_error_sig1_verification_failed",
	ERR_DOC_REV_MSG_SIG2:                           "doc_parse_error_rev_msg_sig2",
	ERR_DOC_REV_MSG_SIG2_KEY:                       "doc_parse_error_rev_msg_sig2_key",
	ERR_DOC_SIG2_VERIFICATION_FAILED:               "doc_parse_error_sig2_verification_failed",
	ERR_DOC_DATAREFS_INVALID_DATAREFS_TYPE:         "doc_parse_error_datarefs_invalid_datarefs_type",
	ERR_DOC_DATAREFS_INVALID_REFS_TYPE:             "doc_parse_error_datarefs_invalid_refs_type",
	ERR_DOC_DATAREFS_INVALID_DATAREF_TYPE:          "doc_parse_error_datarefs_invalid_dataref_type",
	ERR_DOC_DATAREFS_DATAREF_MISSING_FIELDS:        "doc_parse_error_datarefs_dataref_missing_fields",
	ERR_DOC_DATAREFS_INVALID_REF_FIELD_TYPE:        "doc_parse_error_datarefs_invalid_ref_field_type",
	ERR_DOC_DATAREFS_REFS_BRFCID_TYPE:              "doc_parse_error_datarefs_refs_brfcid_type",
	ERR_DOC_DATAREFS_REFS_BRFCID_FIELD_TYPE:        "doc_parse_error_datarefs_refs_brfcid_field_type",
	ERR_DOC_DATAREFS_REFS_TXID_TYPE:                "doc_parse_error_datarefs_refs_txid_type",
	ERR_DOC_DATAREFS_REFS_VOUT_TYPE:                "doc_parse_error_datarefs_refs_vout_type",
	ERR_DOC_DATAREFS_REFS_COMPRESS_TYPE:            "doc_parse_error_datarefs_refs_compress_type",
	ERR_BLOCK_BIND_HASH_MISMATCH:                   "block_bind_hash_mismatch",
	ERR_BLOCK_BIND_SIG_VERIFICATION_FAILED:         "block_bind_sig_verification_failed",
	ERR_BRFCID_INVALID_LENGTH:                      "brfcid_invalid_length",
	ERR_BRFCID_INVALID_CONTENT:                     "brfcid_invalid_content",
	ERR_BRFCID_INVALID_VALUE_TYPE:                  "brfcid_invalid_value_type",
	ERR_DOC_OUTER_SIG_VERIFICATION_FAILED:          "doc_parse_error_outer_sig_verification_failed",
}

// Enum returns the symbolic name of the error code, matching the style of
// the teacher's generated ERR_name table lookups.
func (e ERR) Enum() string {
	if name, ok := errName[e]; ok {
		return name
	}
	return "unknown"
}

func (e ERR) String() string {
	return e.Enum()
}
