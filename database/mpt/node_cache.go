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
	"fmt"
	"sync"

	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore"
	"github.com/Fantom-foundation/ContractStorage/go/common"
)

// NodeCache is a content-addressed collection of trie nodes, mapping the
// hash of each node to its RLP encoding. A single cache may be shared by any
// number of tries. Since entries are identified by their content, tries
// sharing a cache never interfere with each other.
//
// Optionally, a cache is backed by a key/value store from which misses are
// resolved. Nodes are written to stores explicitly through WriteTo, which
// may target a different store for every trie sharing the cache. Stores used
// with a cache must be comparable.
//
// A NodeCache is safe for concurrent use.
type NodeCache struct {
	entries map[common.Hash]*cacheEntry
	stored  map[kvstore.Store]map[common.Hash]struct{} // nodes known to be present in a store
	source  kvstore.Store
	mutex   sync.Mutex
}

type cacheEntry struct {
	encoded []byte
	decoded node // lazily initialized
}

// NewNodeCache creates an empty cache without a backing store.
func NewNodeCache() *NodeCache {
	return &NodeCache{
		entries: map[common.Hash]*cacheEntry{},
		stored:  map[kvstore.Store]map[common.Hash]struct{}{},
	}
}

// Source returns the store backing this cache, nil if there is none.
func (c *NodeCache) Source() kvstore.Store {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.source
}

// SetSource sets the store used for resolving misses.
func (c *NodeCache) SetSource(source kvstore.Store) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.source = source
}

// Size returns the number of nodes in the cache.
func (c *NodeCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Get returns the encoding of the node with the given hash, nil if the node
// is neither present in the cache nor in its backing store.
func (c *NodeCache) Get(hash common.Hash) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	entry, err := c.getEntry(hash)
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.encoded, nil
}

// WriteTo writes the node with the given hash and all nodes reachable from
// it into the given store. Nodes known to be present in the store, either
// written by an earlier call or loaded from it, are skipped together with
// their descendants. Children are written before their parents, so a failed
// call can simply be retried. It returns the number of written nodes.
func (c *NodeCache) WriteTo(target kvstore.Store, root common.Hash) (int, error) {
	if target == nil {
		return 0, ErrNoNodeSource
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	written := 0
	err := c.writeTo(target, root, &written)
	return written, err
}

func (c *NodeCache) writeTo(target kvstore.Store, hash common.Hash, written *int) error {
	if _, found := c.stored[target][hash]; found {
		return nil
	}
	n, err := c.resolveLocked(hash)
	if err != nil {
		return err
	}
	err = forEachReference(n, func(child common.Hash) error {
		return c.writeTo(target, child, written)
	})
	if err != nil {
		return err
	}
	if err := target.Put(hash[:], c.entries[hash].encoded); err != nil {
		return err
	}
	c.markStored(target, hash)
	*written++
	return nil
}

func (c *NodeCache) markStored(store kvstore.Store, hash common.Hash) {
	stored, found := c.stored[store]
	if !found {
		stored = map[common.Hash]struct{}{}
		c.stored[store] = stored
	}
	stored[hash] = struct{}{}
}

// add registers the given encoding under the given hash. Known nodes are
// ignored.
func (c *NodeCache) add(hash common.Hash, encoded []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, found := c.entries[hash]; found {
		return
	}
	c.entries[hash] = &cacheEntry{encoded: encoded}
}

// resolve fetches the node with the given hash. It fails with ErrMissingNode
// if the node is unknown.
func (c *NodeCache) resolve(hash common.Hash) (node, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.resolveLocked(hash)
}

func (c *NodeCache) resolveLocked(hash common.Hash) (node, error) {
	entry, err := c.getEntry(hash)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %x", ErrMissingNode, hash[:])
	}
	if entry.decoded == nil {
		decoded, err := decodeNode(entry.encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode node %x: %w", hash[:], err)
		}
		entry.decoded = decoded
	}
	return entry.decoded, nil
}

// getEntry locates the entry for the given hash, loading it from the source
// on a miss. The caller must hold the lock.
func (c *NodeCache) getEntry(hash common.Hash) (*cacheEntry, error) {
	if entry, found := c.entries[hash]; found {
		return entry, nil
	}
	if c.source == nil {
		return nil, nil
	}
	encoded, err := c.source.Get(hash[:])
	if err != nil || encoded == nil {
		return nil, err
	}
	if got := common.Keccak256(encoded); got != hash {
		return nil, fmt.Errorf("%w: node %x loaded with hash %x", ErrCorruptedNode, hash[:], got[:])
	}
	entry := &cacheEntry{encoded: encoded}
	c.entries[hash] = entry
	c.markStored(c.source, hash)
	return entry, nil
}
