package dataref

import (
	"encoding/binary"

	"github.com/segmentio/encoding/json"

	"github.com/bitcoin-sv/minerid-node/errors"
)

func marshalEntry(e Entry) ([]byte, *errors.Error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, errors.NewProcessingError("failed to encode dataref entry", err)
	}
	return raw, nil
}

func unmarshalEntry(raw []byte) (Entry, *errors.Error) {
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, errors.NewCorruptDataError("failed to decode dataref entry", err)
	}
	return e, nil
}

func encodeUsage(n uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return b[:]
}

func decodeUsage(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
