// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"sync"
)

// Store is an in-memory kvstore.Store implementation. It is safe for
// concurrent use.
type Store struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: map[string][]byte{}}
}

func (s *Store) Get(key []byte) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	value, found := s.data[string(key)]
	if !found {
		return nil, nil
	}
	return cloneBytes(value), nil
}

func (s *Store) Put(key, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[string(key)] = cloneBytes(value)
	return nil
}

func (s *Store) Delete(key []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.data, string(key))
	return nil
}

// Size returns the number of entries in the store.
func (s *Store) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// ForEach visits all entries in the store in undefined order.
func (s *Store) ForEach(visit func(key, value []byte)) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for k, v := range s.data {
		visit([]byte(k), v)
	}
}

func cloneBytes(data []byte) []byte {
	res := make([]byte, len(data))
	copy(res, data)
	return res
}
