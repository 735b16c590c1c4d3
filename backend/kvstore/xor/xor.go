// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package xor

import (
	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore"
	"github.com/Fantom-foundation/ContractStorage/go/common"
)

// DetailsStorageNamespace is the namespace used for deriving the mask of
// per-contract storage tries.
const DetailsStorageNamespace = "details-storage/"

// Store wraps a kvstore.Store and XORs every key and value passing through
// it with a repeating mask. Stores using different masks may thus share a
// single backend without observing each other's entries.
//
// This is an obfuscation, not encryption. Anyone knowing the namespace and
// the address the mask was derived from can reverse it.
type Store struct {
	source kvstore.Store
	mask   []byte
}

// New creates an adapter masking all accesses to the given source with the
// given mask. The mask must not be empty.
func New(source kvstore.Store, mask []byte) *Store {
	if len(mask) == 0 {
		panic("XOR mask must not be empty")
	}
	return &Store{
		source: source,
		mask:   append([]byte(nil), mask...),
	}
}

// MaskFor derives the mask used for the given namespace and address as the
// Keccak256 hash of the namespace followed by the lower-case hex encoding of
// the address.
func MaskFor(namespace string, address common.Address) []byte {
	hash := common.Keccak256([]byte(namespace + address.Hex()))
	return hash[:]
}

// Source returns the wrapped store.
func (s *Store) Source() kvstore.Store {
	return s.source
}

func (s *Store) Get(key []byte) ([]byte, error) {
	value, err := s.source.Get(s.apply(key))
	if err != nil || value == nil {
		return nil, err
	}
	return s.apply(value), nil
}

func (s *Store) Put(key, value []byte) error {
	return s.source.Put(s.apply(key), s.apply(value))
}

func (s *Store) Delete(key []byte) error {
	return s.source.Delete(s.apply(key))
}

// apply produces a copy of the given data XORed with the repeating mask.
// Applying it twice yields the original data.
func (s *Store) apply(data []byte) []byte {
	res := make([]byte, len(data))
	for i, b := range data {
		res[i] = b ^ s.mask[i%len(s.mask)]
	}
	return res
}
