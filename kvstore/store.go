// Package kvstore is a thin ordered byte-keyed store over
// github.com/btcsuite/goleveldb, replacing the teacher's CDBWrapper (a
// leveldb wrapper the C++ original_source also builds on for the Miner-ID
// and DataRef databases, per miner_id_db.cpp's CDBWrapper/CDBIterator use).
package kvstore

import (
	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/iterator"
	"github.com/btcsuite/goleveldb/leveldb/util"

	"github.com/bitcoin-sv/minerid-node/errors"
)

// Store wraps a single leveldb database handle.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the leveldb database at path.
func Open(path string) (*Store, *errors.Error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.NewStorageError("failed to open database at %s", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() *errors.Error {
	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("failed to close database", err)
	}
	return nil
}

func (s *Store) Get(key []byte) (value []byte, found bool, cErr *errors.Error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStorageError("failed to read key", err)
	}
	return v, true, nil
}

func (s *Store) Has(key []byte) (bool, *errors.Error) {
	ok, err := s.db.Has(key, nil)
	if err != nil {
		return false, errors.NewStorageError("failed to check key existence", err)
	}
	return ok, nil
}

func (s *Store) Put(key, value []byte) *errors.Error {
	if err := s.db.Put(key, value, nil); err != nil {
		return errors.NewStorageError("failed to write key", err)
	}
	return nil
}

func (s *Store) Delete(key []byte) *errors.Error {
	if err := s.db.Delete(key, nil); err != nil {
		return errors.NewStorageError("failed to delete key", err)
	}
	return nil
}

// Batch groups writes for atomic application, mirroring the teacher's
// pattern of applying related key updates together rather than one at a
// time (CDBWrapper::Write's fSync batch parameter).
type Batch struct {
	b *leveldb.Batch
}

func NewBatch() *Batch {
	return &Batch{b: new(leveldb.Batch)}
}

func (b *Batch) Put(key, value []byte) { b.b.Put(key, value) }
func (b *Batch) Delete(key []byte)     { b.b.Delete(key) }

func (s *Store) Apply(b *Batch) *errors.Error {
	if err := s.db.Write(b.b, nil); err != nil {
		return errors.NewStorageError("failed to apply batch", err)
	}
	return nil
}

// IteratePrefix calls fn for every key with the given prefix, in key order,
// stopping early if fn returns false.
func (s *Store) IteratePrefix(prefix []byte, fn func(key, value []byte) bool) *errors.Error {
	var iter iterator.Iterator
	if len(prefix) == 0 {
		iter = s.db.NewIterator(nil, nil)
	} else {
		iter = s.db.NewIterator(util.BytesPrefix(prefix), nil)
	}
	defer iter.Release()

	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return errors.NewStorageError("iteration failed", err)
	}
	return nil
}
