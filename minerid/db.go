package minerid

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/bitcoin-sv/minerid-node/collaborators"
	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/kvstore"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

const (
	familyMinerID   = 'I'
	familyMinerUUID = 'U'
)

func minerIDKey(pubKey primitives.CompressedPubKey) []byte {
	h := sha256.Sum256(pubKey.Bytes())
	key := make([]byte, 1+len(h))
	key[0] = familyMinerID
	copy(key[1:], h[:])
	return key
}

func minerUUIDKey(id MinerUUID) []byte {
	key := make([]byte, 1+16)
	key[0] = familyMinerUUID
	b, _ := id.MarshalBinary()
	copy(key[1:], b)
	return key
}

// DB is the Miner-ID database: two persistent column families (Miner-ID
// entries keyed by H(pubkey), MinerUUId entries keyed by UUID) plus the
// in-memory RecentBlocks index, all guarded by one reader-writer mutex per
// §5's locking discipline. Grounded on MinerIdDatabase in miner_id_db.cpp,
// extended with the REVOKED state and reputation machinery §4.I adds.
type DB struct {
	mu sync.RWMutex

	store *kvstore.Store
	cfg   ReputationConfig
	n     int // RecentBlocks window size

	recentBlocks []RecentBlock
}

func NewDB(store *kvstore.Store, cfg ReputationConfig) *DB {
	return &DB{store: store, cfg: cfg, n: cfg.WindowN}
}

func (db *DB) getMinerIDEntry(pubKey primitives.CompressedPubKey) (MinerIDEntry, bool, *errors.Error) {
	raw, found, err := db.store.Get(minerIDKey(pubKey))
	if err != nil {
		return MinerIDEntry{}, false, err
	}
	if !found {
		return MinerIDEntry{}, false, nil
	}
	var entry MinerIDEntry
	if jerr := json.Unmarshal(raw, &entry); jerr != nil {
		return MinerIDEntry{}, false, errors.NewCorruptDataError("failed to decode miner-id entry", jerr)
	}
	return entry, true, nil
}

func (db *DB) putMinerIDEntry(entry MinerIDEntry) *errors.Error {
	raw, jerr := json.Marshal(entry)
	if jerr != nil {
		return errors.NewProcessingError("failed to encode miner-id entry", jerr)
	}
	return db.store.Put(minerIDKey(entry.PubKey), raw)
}

func (db *DB) deleteMinerIDEntry(pubKey primitives.CompressedPubKey) *errors.Error {
	return db.store.Delete(minerIDKey(pubKey))
}

func (db *DB) getMinerUUIDEntry(id MinerUUID) (MinerUUIdEntry, bool, *errors.Error) {
	raw, found, err := db.store.Get(minerUUIDKey(id))
	if err != nil {
		return MinerUUIdEntry{}, false, err
	}
	if !found {
		return MinerUUIdEntry{}, false, nil
	}
	var entry MinerUUIdEntry
	if jerr := json.Unmarshal(raw, &entry); jerr != nil {
		return MinerUUIdEntry{}, false, errors.NewCorruptDataError("failed to decode miner-uuid entry", jerr)
	}
	return entry, true, nil
}

func (db *DB) putMinerUUIDEntry(id MinerUUID, entry MinerUUIdEntry) *errors.Error {
	raw, jerr := json.Marshal(entry)
	if jerr != nil {
		return errors.NewProcessingError("failed to encode miner-uuid entry", jerr)
	}
	return db.store.Put(minerUUIDKey(id), raw)
}

func (db *DB) recordRecentBlockNL(hash primitives.Hash256, height primitives.Height, id MinerUUID) {
	db.recentBlocks = append(db.recentBlocks, RecentBlock{Hash: hash, Height: height, MinerUUID: id})
	for len(db.recentBlocks) > db.n {
		db.recentBlocks = db.recentBlocks[1:]
	}
}

func (db *DB) numRecentBlocksForMinerNL(id MinerUUID) int {
	count := 0
	for _, b := range db.recentBlocks {
		if b.MinerUUID == id {
			count++
		}
	}
	return count
}

func (db *DB) removeRecentBlocksForMinerNL(id MinerUUID) {
	kept := db.recentBlocks[:0]
	for _, b := range db.recentBlocks {
		if b.MinerUUID != id {
			kept = append(kept, b)
		}
	}
	db.recentBlocks = kept
}

// BlockConnected implements block_connected. doc is the already-extracted
// and validated coinbase/miner-info document for the block's coinbase, or
// nil if none was found (rule 1).
func (db *DB) BlockConnected(blockHash primitives.Hash256, height primitives.Height, doc *CoinbaseDocument) *errors.Error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.blockConnectedNL(blockHash, height, doc)
}

// blockConnectedNL is block_connected's body without the lock, so
// UpdateToTip's rebuild scan can invoke it once per block while already
// holding db.mu for the whole pass.
func (db *DB) blockConnectedNL(blockHash primitives.Hash256, height primitives.Height, doc *CoinbaseDocument) *errors.Error {
	if doc == nil {
		db.recordRecentBlockNL(blockHash, height, uuid.Nil)
		return nil
	}

	if doc.RevocationMessage != nil {
		return db.applyRevocationNL(blockHash, height, doc, true)
	}

	if doc.MinerID.Key != doc.MinerID.PrevKey {
		return db.applyRotationNL(blockHash, height, doc)
	}

	return db.applyContinuationNL(blockHash, height, doc)
}

func (db *DB) applyContinuationNL(blockHash primitives.Hash256, height primitives.Height, doc *CoinbaseDocument) *errors.Error {
	entry, found, err := db.getMinerIDEntry(doc.MinerID.Key)
	if err != nil {
		return err
	}

	var id MinerUUID
	if !found {
		id = uuid.New()
		entry = MinerIDEntry{
			UUID:          id,
			PubKey:        doc.MinerID.Key,
			State:         StateCurrent,
			CreationBlock: blockHash,
			CoinbaseDoc:   *doc,
		}
		if err := db.putMinerIDEntry(entry); err != nil {
			return err
		}
		if err := db.putMinerUUIDEntry(id, MinerUUIdEntry{
			FirstBlock:    blockHash,
			LastBlock:     blockHash,
			LatestMinerID: doc.MinerID.Key,
		}); err != nil {
			return err
		}
	} else {
		id = entry.UUID
		entry.CoinbaseDoc = *doc
		if err := db.putMinerIDEntry(entry); err != nil {
			return err
		}
		uentry, ufound, err := db.getMinerUUIDEntry(id)
		if err != nil {
			return err
		}
		if !ufound {
			return errors.NewCorruptDataError("miner-id entry references unknown miner uuid %s", id)
		}
		uentry.LastBlock = blockHash
		if err := db.putMinerUUIDEntry(id, uentry); err != nil {
			return err
		}
	}

	db.creditOrNotNL(blockHash, height, entry.State, id)
	return nil
}

func (db *DB) applyRotationNL(blockHash primitives.Hash256, height primitives.Height, doc *CoinbaseDocument) *errors.Error {
	prevEntry, found, err := db.getMinerIDEntry(doc.MinerID.PrevKey)
	if err != nil {
		return err
	}
	if !found || prevEntry.State != StateCurrent {
		return errors.NewStateError("key rotation rejected: previous miner-id is unknown or not current")
	}

	id := prevEntry.UUID

	prevEntry.State = StateRotated
	prevEntry.RotationBlock = blockHash
	newKey := doc.MinerID.Key
	prevEntry.NextMinerID = &newKey
	if err := db.putMinerIDEntry(prevEntry); err != nil {
		return err
	}

	prevKeyCopy := doc.MinerID.PrevKey
	newEntry := MinerIDEntry{
		UUID:          id,
		PubKey:        doc.MinerID.Key,
		State:         StateCurrent,
		PrevMinerID:   &prevKeyCopy,
		CreationBlock: blockHash,
		CoinbaseDoc:   *doc,
	}
	if err := db.putMinerIDEntry(newEntry); err != nil {
		return err
	}

	uentry, ufound, err := db.getMinerUUIDEntry(id)
	if err != nil {
		return err
	}
	if !ufound {
		return errors.NewCorruptDataError("miner-id entry references unknown miner uuid %s", id)
	}
	uentry.LastBlock = blockHash
	uentry.LatestMinerID = doc.MinerID.Key

	// A plain key rotation leaves the reputation, including any void flag,
	// untouched; recovery is applied only in applyRevocationNL, when a
	// revocation rotates to a fresh id.
	if err := db.putMinerUUIDEntry(id, uentry); err != nil {
		return err
	}

	prometheusRotations.Inc()
	db.creditOrNotNL(blockHash, height, StateCurrent, id)
	return nil
}

func (db *DB) applyRevocationNL(blockHash primitives.Hash256, height primitives.Height, doc *CoinbaseDocument, creditBlock bool) *errors.Error {
	rm := doc.RevocationMessage

	// The entry being superseded is always looked up by prevMinerId, not by
	// minerId: a revocation may arrive together with a key rotation (new
	// minerId not yet known to the DB) or on its own (minerId == prevMinerId,
	// the entry already is the current one).
	prevEntry, found, err := db.getMinerIDEntry(doc.MinerID.PrevKey)
	if err != nil {
		return err
	}
	if !found || prevEntry.State != StateCurrent {
		return errors.NewStateError("revocation rejected: prevMinerId is not a known current id")
	}

	storedRevKeys := prevEntry.CoinbaseDoc.RevocationKeys
	if !doc.HasRevocationKeys ||
		doc.RevocationKeys.Key != doc.RevocationKeys.PrevKey ||
		doc.RevocationKeys.Key != storedRevKeys.Key ||
		doc.RevocationKeys.PrevKey != storedRevKeys.PrevKey {
		return errors.NewStateError("revocation rejected: revocation key chain mismatch or revocation key rolled in same document")
	}

	id := prevEntry.UUID
	rotated := doc.MinerID.Key != doc.MinerID.PrevKey

	// Walk the chain of previous ids (starting at prevMinerId) looking for
	// the compromised id. If found, every descendant from there up to and
	// including the current minerId is marked REVOKED.
	chain := []primitives.CompressedPubKey{doc.MinerID.PrevKey}
	cursor := doc.MinerID.PrevKey
	for {
		e, found, err := db.getMinerIDEntry(cursor)
		if err != nil {
			return err
		}
		if !found || e.PrevMinerID == nil {
			break
		}
		cursor = *e.PrevMinerID
		chain = append(chain, cursor)
	}

	revokedFrom := -1
	for i, k := range chain {
		if k == rm.CompromisedMinerID {
			revokedFrom = i
			break
		}
	}
	if revokedFrom == -1 {
		return errors.NewStateError("revocation rejected: compromised id is not an ancestor of the current miner-id")
	}

	// A revocation with no accompanying rotation can never revoke the
	// id that is still active: it may only retire strict ancestors.
	if !rotated && revokedFrom == 0 {
		return errors.NewStateError("revocation rejected: cannot revoke the active minerId without a successor")
	}

	// Determine whether this reaches the very first id for the miner
	// (full revocation) or stops partway (partial revocation). Only
	// meaningful when rotated: a non-rotated revocation never retires the
	// active id, so it can never be a full revocation of the miner.
	oldestReached := false
	if rotated && revokedFrom == len(chain)-1 {
		e, found, err := db.getMinerIDEntry(chain[revokedFrom])
		if err != nil {
			return err
		}
		oldestReached = found && e.PrevMinerID == nil
	}

	// Mark the compromised id and every id between it and the just-superseded
	// prevMinerId as REVOKED. When rotated, prevMinerId (chain[0]) is
	// included, since the rotation retires it anyway. When not rotated,
	// chain[0] is the still-active id and must be excluded.
	toRevoke := chain[:revokedFrom+1]
	if !rotated {
		toRevoke = chain[1 : revokedFrom+1]
	}
	for _, k := range toRevoke {
		e, found, err := db.getMinerIDEntry(k)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		e.State = StateRevoked
		if err := db.putMinerIDEntry(e); err != nil {
			return err
		}
	}

	uentry, ufound, err := db.getMinerUUIDEntry(id)
	if err != nil {
		return err
	}
	if !ufound {
		return errors.NewCorruptDataError("miner-id entry references unknown miner uuid %s", id)
	}

	prometheusRevocations.Inc()

	if oldestReached {
		// Full revocation: every id for the miner is REVOKED. Walk forward
		// from the oldest ancestor (if any survive un-revoked, there are
		// none left by construction) and purge recent-block credit.
		prometheusFullRevocations.Inc()
		db.removeRecentBlocksForMinerNL(id)
		if creditBlock {
			db.recordRecentBlockNL(blockHash, height, uuid.Nil)
		}
		return nil
	}

	// Partial revocation with rotation: the ancestor just before the revoked
	// segment survives and its NextMinerID is repointed at the document's
	// new minerId, which becomes CURRENT.
	if rotated && revokedFrom+1 < len(chain) {
		survivor, found, err := db.getMinerIDEntry(chain[revokedFrom+1])
		if err != nil {
			return err
		}
		if found {
			next := doc.MinerID.Key
			survivor.NextMinerID = &next
			if err := db.putMinerIDEntry(survivor); err != nil {
				return err
			}
		}
	}

	newEntry := MinerIDEntry{
		UUID:        id,
		PubKey:      doc.MinerID.Key,
		State:       StateCurrent,
		CoinbaseDoc: *doc,
	}
	if rotated {
		newEntry.PrevMinerID = &doc.MinerID.PrevKey
		if creditBlock {
			newEntry.CreationBlock = blockHash
		}
	} else {
		// Not rotated: the active id is unchanged, just re-persisted with
		// its existing lineage link and creation block preserved.
		newEntry.PrevMinerID = prevEntry.PrevMinerID
		newEntry.CreationBlock = prevEntry.CreationBlock
	}
	if err := db.putMinerIDEntry(newEntry); err != nil {
		return err
	}

	wasVoid := uentry.Reputation.Void
	if creditBlock {
		uentry.LastBlock = blockHash
	}
	uentry.LatestMinerID = doc.MinerID.Key
	if wasVoid && rotated {
		ApplyRecovery(&uentry.Reputation, db.cfg, time.Now())
		prometheusReputationRecover.Inc()
	}
	if err := db.putMinerUUIDEntry(id, uentry); err != nil {
		return err
	}

	if creditBlock {
		db.creditOrNotNL(blockHash, height, StateCurrent, id)
	}
	return nil
}

// creditOrNotNL implements rule 5: a block is only credited to a miner's
// UUID if the entry matching the document's claimed current minerId is
// itself CURRENT.
func (db *DB) creditOrNotNL(blockHash primitives.Hash256, height primitives.Height, state State, id MinerUUID) {
	if state == StateCurrent {
		db.recordRecentBlockNL(blockHash, height, id)
	} else {
		db.recordRecentBlockNL(blockHash, height, uuid.Nil)
	}
}

// BlockDisconnected implements block_disconnected: remove the block from
// RecentBlocks, leaving DB entries intact.
func (db *DB) BlockDisconnected(blockHash primitives.Hash256) {
	db.mu.Lock()
	defer db.mu.Unlock()

	kept := db.recentBlocks[:0]
	for _, b := range db.recentBlocks {
		if b.Hash != blockHash {
			kept = append(kept, b)
		}
	}
	db.recentBlocks = kept
}

// InvalidBlock implements invalid_block: void the reputation of whichever
// miner produced the block, if known and not already void.
func (db *DB) InvalidBlock(blockHash primitives.Hash256, minerID *primitives.CompressedPubKey) *errors.Error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if minerID == nil {
		return nil
	}

	entry, found, err := db.getMinerIDEntry(*minerID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	uentry, ufound, err := db.getMinerUUIDEntry(entry.UUID)
	if err != nil {
		return err
	}
	if !ufound || uentry.Reputation.Void {
		return nil
	}

	uentry.Reputation.Void = true
	uentry.Reputation.VoidingID = *minerID
	prometheusReputationVoided.Inc()
	return db.putMinerUUIDEntry(entry.UUID, uentry)
}

// CheckReputation implements check_reputation(pubkey_hash) -> bool.
func (db *DB) CheckReputation(pubKey primitives.CompressedPubKey) (bool, *errors.Error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entry, found, err := db.getMinerIDEntry(pubKey)
	if err != nil {
		return false, err
	}
	if !found || entry.State == StateRevoked {
		return false, nil
	}

	uentry, ufound, err := db.getMinerUUIDEntry(entry.UUID)
	if err != nil {
		return false, err
	}
	if !ufound {
		return false, errors.NewCorruptDataError("miner-id entry references unknown miner uuid %s", entry.UUID)
	}

	count := db.numRecentBlocksForMinerNL(entry.UUID)
	return CheckGood(uentry.Reputation, count), nil
}

// ProcessRevokeMid implements process_revokemid: applies a partial
// revocation carried by a P2P revokemid message as if it were embedded in
// a coinbase document.
func (db *DB) ProcessRevokeMid(msg *RevokeMid) *errors.Error {
	if !msg.VerifySignatures() {
		return errors.NewInvalidArgumentError("revokemid signature verification failed")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	currentEntry, found, err := db.getMinerIDEntry(msg.MinerID)
	if err != nil {
		return err
	}
	if !found || currentEntry.State != StateCurrent {
		return errors.NewStateError("revokemid rejected: minerId is not a known current id")
	}

	storedRevKeys := currentEntry.CoinbaseDoc.RevocationKeys
	if !currentEntry.CoinbaseDoc.HasRevocationKeys || storedRevKeys.Key != msg.RevocationKey {
		return errors.NewStateError("revokemid rejected: revocation key does not match current entry")
	}

	// Synthesize a minimal document carrying the same minerId (no rotation,
	// only a revocation) so applyRevocationNL's chain walk and state
	// transition logic applies unchanged. A revokemid arrives outside of any
	// block, so it is not credited against a block hash/height.
	var noBlock primitives.Hash256
	doc := currentEntry.CoinbaseDoc
	doc.MinerID.PrevKey = currentEntry.PubKey
	doc.RevocationMessage = &RevocationMessage{
		CompromisedMinerID: msg.RevocationMessage,
		Sig1:               msg.Sig1,
		Sig2:               msg.Sig2,
	}

	return db.applyRevocationNL(noBlock, 0, &doc, false)
}

// Prune implements prune(): for every miner, ROTATED ids older than
// numIDsToKeep steps behind the CURRENT id are discarded entirely (CURRENT
// is never touched), then every miner's reputation M is decayed one step
// if its decay period has elapsed. Grounded on miner_id_db.cpp's
// periodic-prune pass, generalized with the M-decay rule §4.I/§4.J add.
func (db *DB) Prune(numIDsToKeep int) *errors.Error {
	db.mu.Lock()
	defer db.mu.Unlock()

	byUUID := map[MinerUUID]map[primitives.CompressedPubKey]MinerIDEntry{}
	iterErr := db.store.IteratePrefix([]byte{familyMinerID}, func(_, v []byte) bool {
		var e MinerIDEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return true
		}
		m := byUUID[e.UUID]
		if m == nil {
			m = map[primitives.CompressedPubKey]MinerIDEntry{}
			byUUID[e.UUID] = m
		}
		m[e.PubKey] = e
		return true
	})
	if iterErr != nil {
		return iterErr
	}

	for _, chain := range byUUID {
		var current *MinerIDEntry
		for _, e := range chain {
			if e.State == StateCurrent {
				found := e
				current = &found
				break
			}
		}
		if current == nil {
			continue
		}

		kept := 0
		cursor := current.PrevMinerID
		for cursor != nil {
			e, ok := chain[*cursor]
			if !ok {
				break
			}
			next := e.PrevMinerID
			if e.State == StateRotated {
				kept++
				if kept > numIDsToKeep {
					if err := db.deleteMinerIDEntry(e.PubKey); err != nil {
						return err
					}
				}
			}
			cursor = next
		}
	}

	return db.decayAllReputationsNL()
}

func (db *DB) decayAllReputationsNL() *errors.Error {
	now := time.Now()
	type update struct {
		id MinerUUID
		ue MinerUUIdEntry
	}
	var toUpdate []update
	iterErr := db.store.IteratePrefix([]byte{familyMinerUUID}, func(k, v []byte) bool {
		id, err := uuid.FromBytes(k[1:])
		if err != nil {
			return true
		}
		var e MinerUUIdEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return true
		}
		before := e.Reputation.M
		ApplyDecay(&e.Reputation, db.cfg, now)
		if e.Reputation.M != before {
			toUpdate = append(toUpdate, update{id: id, ue: e})
		}
		return true
	})
	if iterErr != nil {
		return iterErr
	}
	for _, u := range toUpdate {
		if err := db.putMinerUUIDEntry(u.id, u.ue); err != nil {
			return err
		}
	}
	return nil
}

// DecayReputations applies one reputation-decay pass without touching the
// chain at all. Used by hosts with no wired ChainReader (a periodic
// housekeeping sweep that only needs M to track elapsed wall-clock time).
func (db *DB) DecayReputations() *errors.Error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.decayAllReputationsNL()
}

// DocumentSource extracts the already-validated coinbase/miner-info document
// for a connected block, the same shape block_connected's own doc argument
// takes from its caller. update_to_tip's rebuild path needs one extraction
// per scanned block; a nil doc means the block carried no miner-id.
type DocumentSource interface {
	CoinbaseDocument(ctx context.Context, blockHash primitives.Hash256, height primitives.Height) (*CoinbaseDocument, error)
}

// replayCreditNL resolves which MinerUUID (if any) a non-rebuild
// update_to_tip pass should credit a scanned block to, without mutating any
// persisted MinerIdEntry/MinerUUIdEntry state: it only asks whether the
// entry currently on file for doc's claimed minerId is CURRENT, mirroring
// rule 5 (creditOrNotNL) against already-converged state rather than
// replaying the full rotation/revocation state machine.
func (db *DB) replayCreditNL(doc *CoinbaseDocument) (MinerUUID, *errors.Error) {
	if doc == nil {
		return uuid.Nil, nil
	}
	entry, found, err := db.getMinerIDEntry(doc.MinerID.Key)
	if err != nil {
		return uuid.Nil, err
	}
	if !found || entry.State != StateCurrent {
		return uuid.Nil, nil
	}
	return entry.UUID, nil
}

// UpdateToTip implements update_to_tip(rebuild?): scans from
// max(0, tip_height-N) to the chain's current tip. When rebuild is true it
// re-runs block_connected for every block in that range, reconstructing the
// full state machine (and the RecentBlocks window) from scratch — the path
// a reorg or a corrupted DB needs. When rebuild is false it only replays
// RecentBlocks insertions against already-persisted MinerIdEntry state,
// the cheaper reconstruction a clean restart needs so check_reputation has
// a populated window again. docs may be nil when rebuild is false and the
// caller only wants the decay sweep plus an empty-window scan.
func (db *DB) UpdateToTip(ctx context.Context, chain collaborators.ChainReader, docs DocumentSource, rebuild bool) *errors.Error {
	tip, terr := chain.TipHeight(ctx)
	if terr != nil {
		return errors.NewProcessingError("update_to_tip: failed to read chain tip height", terr)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	start := tip - primitives.Height(db.n)
	if start < 0 {
		start = 0
	}

	if rebuild {
		db.recentBlocks = nil
	}

	for h := start; h <= tip; h++ {
		blockHash, ok, berr := chain.BlockHash(ctx, h)
		if berr != nil {
			return errors.NewProcessingError("update_to_tip: failed to read block hash at height %d", h, berr)
		}
		if !ok {
			continue
		}

		var doc *CoinbaseDocument
		if docs != nil {
			var derr error
			doc, derr = docs.CoinbaseDocument(ctx, blockHash, h)
			if derr != nil {
				return errors.NewProcessingError("update_to_tip: failed to extract coinbase document for block %s", blockHash.String(), derr)
			}
		}

		if rebuild {
			if err := db.blockConnectedNL(blockHash, h, doc); err != nil {
				return err
			}
			continue
		}

		id, err := db.replayCreditNL(doc)
		if err != nil {
			return err
		}
		db.recordRecentBlockNL(blockHash, h, id)
	}

	return db.decayAllReputationsNL()
}

// MinerSummary is one entry of DumpJSON's per-miner report.
type MinerSummary struct {
	UUID            MinerUUID                  `json:"uuid"`
	FirstBlock      primitives.Hash256          `json:"firstblock"`
	LatestBlock     primitives.Hash256          `json:"latestblock"`
	LatestMinerID   primitives.CompressedPubKey `json:"latestminerid"`
	ReputationVoid  bool                        `json:"reputationvoid"`
	ReputationM     uint32                      `json:"reputationm"`
	NumRecentBlocks int                         `json:"numrecentblocks"`
	WindowN         int                         `json:"windowsize"`
}

// DumpJSON implements dump_json: a per-miner summary suitable for RPC
// presentation. Grounded on miner_id_db.cpp's DumpJSON().
func (db *DB) DumpJSON() ([]MinerSummary, *errors.Error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []MinerSummary
	iterErr := db.store.IteratePrefix([]byte{familyMinerUUID}, func(k, v []byte) bool {
		id, err := uuid.FromBytes(k[1:])
		if err != nil {
			return true
		}
		var e MinerUUIdEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return true
		}
		out = append(out, MinerSummary{
			UUID:            id,
			FirstBlock:      e.FirstBlock,
			LatestBlock:     e.LastBlock,
			LatestMinerID:   e.LatestMinerID,
			ReputationVoid:  e.Reputation.Void,
			ReputationM:     e.Reputation.M,
			NumRecentBlocks: db.numRecentBlocksForMinerNL(id),
			WindowN:         db.n,
		})
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}
	return out, nil
}
