// Package dataref implements the DataRef database: the two-column-family
// store of raw transactions (miner-info and dataref txns) proven into a
// block by a Merkle proof. Grounded on
// _examples/original_source/src/miner_id/dataref_index.h/dataref_index_detail.h's
// two-family CDBWrapper layout and LockingAccess guard pattern, and spec.md
// §4.H/§6.4.
package dataref

import (
	"sync"

	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/kvstore"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

// Family distinguishes the two column families §3.2/§4.H describe.
type Family byte

const (
	FamilyDataRefTxn  Family = 'T'
	FamilyMinerInfoTxn Family = 'I'
	familyDiskUsage   Family = 'D'
)

var diskUsageKey = []byte{byte(familyDiskUsage)}

// Entry is one DataDbEntry: a raw transaction proven into a block.
type Entry struct {
	TxID  primitives.Hash256 `json:"txid"`
	Tx    []byte             `json:"tx"`
	Block primitives.Hash256 `json:"blockId"`
	Proof []byte             `json:"proof"`
}

// DB is the DataRef database. §5 describes its concurrency model as a
// single mutex obtained through an Access guard, held for the lifetime of
// the guard — modeled here as a plain sync.Mutex with an Access method
// returning a token whose Release unlocks it, since Go has no RAII but a
// deferred Release reads the same at call sites.
type DB struct {
	mu    sync.Mutex
	store *kvstore.Store
}

func NewDB(store *kvstore.Store) *DB {
	return &DB{store: store}
}

// Access acquires the DB's single mutex and returns a guard whose Release
// must be deferred by the caller, mirroring LockingAccess's RAII guard.
func (db *DB) Access() *Guard {
	db.mu.Lock()
	return &Guard{db: db}
}

// Guard holds the DataRef DB's mutex for the duration of one logical
// operation, matching dataref_index_detail.h's LockingAccess.
type Guard struct {
	db       *DB
	released bool
}

func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.db.mu.Unlock()
}

func key(family Family, txid primitives.Hash256) []byte {
	k := make([]byte, 1+32)
	k[0] = byte(family)
	copy(k[1:], txid[:])
	return k
}

func (g *Guard) AddEntry(family Family, e Entry) *errors.Error {
	raw, jerr := marshalEntry(e)
	if jerr != nil {
		return jerr
	}

	usage, _, err := g.db.store.Get(diskUsageKey)
	if err != nil {
		return err
	}
	newUsage := decodeUsage(usage) + uint64(len(raw))

	b := kvstore.NewBatch()
	b.Put(key(family, e.TxID), raw)
	b.Put(diskUsageKey, encodeUsage(newUsage))
	return g.db.store.Apply(b)
}

func (g *Guard) LookupEntry(family Family, txid primitives.Hash256) (Entry, bool, *errors.Error) {
	raw, found, err := g.db.store.Get(key(family, txid))
	if err != nil {
		return Entry{}, false, err
	}
	if !found {
		return Entry{}, false, nil
	}
	e, jerr := unmarshalEntry(raw)
	if jerr != nil {
		return Entry{}, false, jerr
	}
	return e, true, nil
}

func (g *Guard) EntryExists(family Family, txid primitives.Hash256) (bool, *errors.Error) {
	return g.db.store.Has(key(family, txid))
}

func (g *Guard) DeleteEntry(family Family, txid primitives.Hash256) *errors.Error {
	return g.db.store.Delete(key(family, txid))
}

func (g *Guard) AllEntries(family Family) ([]Entry, *errors.Error) {
	var out []Entry
	err := g.db.store.IteratePrefix([]byte{byte(family)}, func(_, v []byte) bool {
		e, jerr := unmarshalEntry(v)
		if jerr != nil {
			return true
		}
		out = append(out, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DiskUsage returns the persisted running total of bytes stored across
// both families, maintained atomically alongside every AddEntry.
func (g *Guard) DiskUsage() (uint64, *errors.Error) {
	raw, _, err := g.db.store.Get(diskUsageKey)
	if err != nil {
		return 0, err
	}
	return decodeUsage(raw), nil
}

// Summary is one entry of DumpJSON's report.
type Summary struct {
	Family Family             `json:"family"`
	TxID   primitives.Hash256 `json:"txid"`
	Block  primitives.Hash256 `json:"blockId"`
}

// DumpJSON implements dump_json: a summary of every stored entry across
// both families, grounded on DumpDataRefTxnsJSON/DumpMinerInfoTxnsJSON.
func (g *Guard) DumpJSON() ([]Summary, *errors.Error) {
	var out []Summary
	for _, fam := range []Family{FamilyDataRefTxn, FamilyMinerInfoTxn} {
		entries, err := g.AllEntries(fam)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out = append(out, Summary{Family: fam, TxID: e.TxID, Block: e.Block})
		}
	}
	return out, nil
}
