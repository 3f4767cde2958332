package minerid

import (
	"time"

	"github.com/google/uuid"

	"github.com/bitcoin-sv/minerid-node/primitives"
)

// State is a Miner-ID's position in its per-key lifecycle. Transitions only
// ever move forward: CURRENT -> ROTATED -> REVOKED, or CURRENT -> REVOKED
// directly. Grounded on miner_id_db.cpp's mCurrent boolean, generalized to
// a three-state enum to carry the REVOKED state §4.I adds.
type State int

const (
	StateCurrent State = iota
	StateRotated
	StateRevoked
)

func (s State) String() string {
	switch s {
	case StateCurrent:
		return "current"
	case StateRotated:
		return "rotated"
	case StateRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// MinerUUID identifies one miner across however many times its key has been
// rotated. Grounded on miner_id_db.cpp's MinerUUId (boost::uuid), ported to
// google/uuid.
type MinerUUID = uuid.UUID

// MinerIDEntry is the record stored under a miner-id pubkey hash: which
// miner it belongs to, its position in the rotation chain, and the
// coinbase document that last updated it. Grounded on
// MinerIdDatabase::MinerIdEntry in miner_id_db.cpp, extended with
// PrevMinerID/NextMinerID links and a State rather than a current bool so
// the revocation chain can be walked in both directions.
type MinerIDEntry struct {
	UUID          MinerUUID
	PubKey        primitives.CompressedPubKey
	State         State
	PrevMinerID   *primitives.CompressedPubKey
	NextMinerID   *primitives.CompressedPubKey
	CreationBlock primitives.Hash256
	RotationBlock primitives.Hash256
	CoinbaseDoc   CoinbaseDocument
}

// Reputation tracks a miner's rolling M-of-N block production record.
// Grounded on MinerUUIdEntry::mReputationVoid, extended with the
// M-scaling/decay machinery §4.I/§4.J (reputation.go) introduces.
type Reputation struct {
	Void        bool
	VoidingID   primitives.CompressedPubKey
	M           uint32
	MIncreasedAt time.Time // when the M-scaling bump was applied, for decay scheduling
}

// MinerUUIdEntry is the record stored under a miner UUID: its block range
// and current reputation. Grounded on MinerIdDatabase::MinerUUIdEntry.
type MinerUUIdEntry struct {
	FirstBlock    primitives.Hash256
	LastBlock     primitives.Hash256
	LatestMinerID primitives.CompressedPubKey
	Reputation    Reputation
}

// RecentBlock is one entry of the in-memory RecentBlocks index. A nil
// MinerUUID (uuid.Nil) means the block's coinbase carried no recognizable
// miner-id. Grounded on mLastBlocksTable's multi-index record.
type RecentBlock struct {
	Hash      primitives.Hash256
	Height    primitives.Height
	MinerUUID MinerUUID
}

func (b RecentBlock) HasMiner() bool {
	return b.MinerUUID != uuid.Nil
}
