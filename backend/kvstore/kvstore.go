// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kvstore

//go:generate mockgen -source kvstore.go -destination kvstore_mocks.go -package kvstore

// Store is a raw, byte-oriented key/value store. It is the physical backend
// trie nodes are eventually persisted in. Implementations must copy keys and
// values passed to or returned from them, so callers are free to modify
// their buffers afterwards.
type Store interface {
	// Get returns the value associated to the given key or nil if there is
	// no such value.
	Get(key []byte) ([]byte, error)

	// Put associates the given value to the given key, replacing any
	// previously stored value.
	Put(key, value []byte) error

	// Delete removes the value associated to the given key. Deleting a
	// missing key is not an error.
	Delete(key []byte) error
}
