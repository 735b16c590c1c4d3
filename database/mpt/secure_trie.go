// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mpt

import (
	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore"
	"github.com/Fantom-foundation/ContractStorage/go/common"
)

// SecureTrie is a trie hashing all keys with Keccak256 before using them as
// paths. This bounds the depth of the trie independently of the chosen keys.
// It is the layout used by Ethereum for contract storage.
type SecureTrie struct {
	trie *Trie
}

// NewSecureTrie creates an empty secure trie using the given node cache.
func NewSecureTrie(cache *NodeCache) *SecureTrie {
	return &SecureTrie{trie: NewTrie(cache)}
}

// OpenSecureTrie opens a secure trie at the given root hash.
func OpenSecureTrie(cache *NodeCache, root common.Hash) (*SecureTrie, error) {
	trie, err := OpenTrie(cache, root)
	if err != nil {
		return nil, err
	}
	return &SecureTrie{trie: trie}, nil
}

// Cache returns the node cache used by this trie.
func (t *SecureTrie) Cache() *NodeCache {
	return t.trie.Cache()
}

// Copy creates an independent handle on the current content of this trie.
func (t *SecureTrie) Copy() *SecureTrie {
	return &SecureTrie{trie: t.trie.Copy()}
}

func (t *SecureTrie) Get(key []byte) ([]byte, error) {
	path := common.Keccak256(key)
	return t.trie.Get(path[:])
}

func (t *SecureTrie) Put(key, value []byte) error {
	path := common.Keccak256(key)
	return t.trie.Put(path[:], value)
}

func (t *SecureTrie) Delete(key []byte) error {
	path := common.Keccak256(key)
	return t.trie.Delete(path[:])
}

func (t *SecureTrie) Hash() common.Hash {
	return t.trie.Hash()
}

// WriteTo writes all nodes of this trie into the given store, see
// Trie.WriteTo.
func (t *SecureTrie) WriteTo(target kvstore.Store) (int, error) {
	return t.trie.WriteTo(target)
}
