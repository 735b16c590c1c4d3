// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// TableSpace divides a single LevelDB instance into independent key ranges.
// Each key written through a Store is prefixed by the store's table space.
type TableSpace byte

const (
	// TrieNodeKey is the table space of persisted storage-trie nodes.
	TrieNodeKey TableSpace = 'N'
	// MetadataKey is the table space of tool-maintained metadata.
	MetadataKey TableSpace = 'M'
)

// Store is a kvstore.Store backed by LevelDB. Multiple stores with different
// table spaces may share a single database instance.
type Store struct {
	db    *leveldb.DB
	table TableSpace
	owned bool
}

// Open opens or creates a LevelDB database in the given directory and
// returns a store operating on the given table space. Closing the store
// closes the database.
func Open(path string, table TableSpace) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB at %s: %w", path, err)
	}
	return &Store{db: db, table: table, owned: true}, nil
}

// New creates a store on top of an existing database. The database remains
// owned by the caller and is not closed when the store is closed.
func New(db *leveldb.DB, table TableSpace) *Store {
	return &Store{db: db, table: table}
}

// DB returns the underlying database.
func (s *Store) DB() *leveldb.DB {
	return s.db
}

func (s *Store) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(s.toDbKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Put(key, value []byte) error {
	return s.db.Put(s.toDbKey(key), value, nil)
}

func (s *Store) Delete(key []byte) error {
	return s.db.Delete(s.toDbKey(key), nil)
}

// Flush forces pending writes to disk by issuing an empty synchronous write.
func (s *Store) Flush() error {
	return s.db.Write(new(leveldb.Batch), &opt.WriteOptions{Sync: true})
}

// Close closes the underlying database if it is owned by this store.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return errors.Join(s.Flush(), s.db.Close())
}

func (s *Store) toDbKey(key []byte) []byte {
	res := make([]byte, 0, len(key)+1)
	res = append(res, byte(s.table))
	return append(res, key...)
}
