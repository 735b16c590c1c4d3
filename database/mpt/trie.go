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
	"bytes"

	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore"
	"github.com/Fantom-foundation/ContractStorage/go/common"
)

const (
	// ErrMissingNode is reported when a node referenced by a trie can not be
	// found in the node cache or its backing store.
	ErrMissingNode = common.ConstError("missing trie node")
	// ErrCorruptedNode is reported when a node loaded from a backing store
	// does not match the hash it is referenced by.
	ErrCorruptedNode = common.ConstError("corrupted trie node")
	// ErrNoNodeSource is reported when writing nodes without a target store.
	ErrNoNodeSource = common.ConstError("node cache has no backing store")
)

// EmptyRootHash is the root hash of an empty trie, the hash of the RLP
// encoding of an empty string.
var EmptyRootHash = common.Keccak256([]byte{0x80})

// Trie is a handle on a Merkle-Patricia trie as used by Ethereum for storing
// account and storage data. It maps byte-string keys to non-empty byte-string
// values and produces a root hash committing to the full content.
//
// Nodes of a trie are held by a NodeCache which may be shared by multiple
// tries. Updates on one trie handle are never visible to other handles, even
// if they have been opened at the same root.
//
// A Trie is not safe for concurrent use. Distinct handles on a shared cache
// may be used concurrently.
type Trie struct {
	cache *NodeCache
	root  node
}

// NewTrie creates an empty trie using the given cache for its nodes.
func NewTrie(cache *NodeCache) *Trie {
	return &Trie{cache: cache}
}

// OpenTrie creates a trie handle on the content committed to by the given
// root hash. The root node has to be present in the given cache or its
// backing store. Opening the EmptyRootHash always succeeds.
func OpenTrie(cache *NodeCache, root common.Hash) (*Trie, error) {
	if root == EmptyRootHash {
		return NewTrie(cache), nil
	}
	n, err := cache.resolve(root)
	if err != nil {
		return nil, err
	}
	return &Trie{cache: cache, root: n}, nil
}

// Cache returns the node cache used by this trie.
func (t *Trie) Cache() *NodeCache {
	return t.cache
}

// Copy creates an independent handle on the current content of this trie.
// Since nodes are immutable, this does not copy any nodes.
func (t *Trie) Copy() *Trie {
	return &Trie{cache: t.cache, root: t.root}
}

// Get returns the value stored for the given key, nil if there is none.
func (t *Trie) Get(key []byte) ([]byte, error) {
	value, err := t.get(t.root, ToNibblePath(key))
	if err != nil {
		return nil, err
	}
	return bytes.Clone(value), nil
}

// Put associates the given value with the given key. Putting an empty value
// deletes the key.
func (t *Trie) Put(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	root, err := t.insert(t.root, ToNibblePath(key), bytes.Clone(value))
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

// Delete removes the given key from the trie. Deleting a missing key is a
// no-op.
func (t *Trie) Delete(key []byte) error {
	root, err := t.delete(t.root, ToNibblePath(key))
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

// Hash computes the root hash of the trie. All nodes created since the last
// call are recorded in the node cache, such that the trie may be re-opened
// at the resulting hash.
func (t *Trie) Hash() common.Hash {
	if t.root == nil {
		return EmptyRootHash
	}
	if h, ok := t.root.(hashNode); ok {
		return common.Hash(h)
	}
	t.root = hasher{t.cache}.hash(t.root)
	c := getCommitment(t.root)
	// Roots are always referenced by hash, even if small enough to be embedded.
	t.cache.add(c.hash, c.encoded)
	return c.hash
}

// WriteTo writes all nodes of this trie not yet known to be present in the
// given store into it. Nodes of other tries sharing the cache are not
// written. It returns the number of written nodes.
func (t *Trie) WriteTo(target kvstore.Store) (int, error) {
	root := t.Hash()
	if root == EmptyRootHash {
		return 0, nil
	}
	return t.cache.WriteTo(target, root)
}

func (t *Trie) get(n node, path []Nibble) ([]byte, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil
	case *leafNode:
		if len(n.path) == len(path) && IsPrefixOf(n.path, path) {
			return n.value, nil
		}
		return nil, nil
	case *extensionNode:
		if !IsPrefixOf(n.path, path) {
			return nil, nil
		}
		return t.get(n.next, path[len(n.path):])
	case *branchNode:
		if len(path) == 0 {
			return n.value, nil
		}
		return t.get(n.children[path[0]], path[1:])
	case hashNode:
		resolved, err := t.cache.resolve(common.Hash(n))
		if err != nil {
			return nil, err
		}
		return t.get(resolved, path)
	}
	panic("unknown node type")
}

// insert returns the node replacing n after setting path to value. If the
// value is already present, n itself is returned.
func (t *Trie) insert(n node, path []Nibble, value []byte) (node, error) {
	switch n := n.(type) {
	case nil:
		return &leafNode{path: path, value: value}, nil

	case *leafNode:
		match := GetCommonPrefixLength(n.path, path)
		if match == len(n.path) && match == len(path) {
			if bytes.Equal(n.value, value) {
				return n, nil
			}
			return &leafNode{path: n.path, value: value}, nil
		}
		branch := &branchNode{}
		branch.setValue(n.path[match:], n.value)
		branch.setValue(path[match:], value)
		return withPrefix(path[:match], branch), nil

	case *extensionNode:
		match := GetCommonPrefixLength(n.path, path)
		if match == len(n.path) {
			next, err := t.insert(n.next, path[match:], value)
			if err != nil || next == n.next {
				return n, err
			}
			return &extensionNode{path: n.path, next: next}, nil
		}
		branch := &branchNode{}
		branch.children[n.path[match]] = withPrefix(n.path[match+1:], n.next)
		branch.setValue(path[match:], value)
		return withPrefix(path[:match], branch), nil

	case *branchNode:
		if len(path) == 0 {
			if bytes.Equal(n.value, value) {
				return n, nil
			}
			res := n.copy()
			res.value = value
			return res, nil
		}
		child, err := t.insert(n.children[path[0]], path[1:], value)
		if err != nil || child == n.children[path[0]] {
			return n, err
		}
		res := n.copy()
		res.children[path[0]] = child
		return res, nil

	case hashNode:
		resolved, err := t.cache.resolve(common.Hash(n))
		if err != nil {
			return n, err
		}
		res, err := t.insert(resolved, path, value)
		if err != nil || res == resolved {
			return n, err
		}
		return res, nil
	}
	panic("unknown node type")
}

// delete returns the node replacing n after removing path. If the path is
// not present, n itself is returned.
func (t *Trie) delete(n node, path []Nibble) (node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case *leafNode:
		if len(n.path) == len(path) && IsPrefixOf(n.path, path) {
			return nil, nil
		}
		return n, nil

	case *extensionNode:
		if !IsPrefixOf(n.path, path) {
			return n, nil
		}
		next, err := t.delete(n.next, path[len(n.path):])
		if err != nil || next == n.next {
			return n, err
		}
		return t.merge(n.path, next)

	case *branchNode:
		res := n.copy()
		if len(path) == 0 {
			if n.value == nil {
				return n, nil
			}
			res.value = nil
		} else {
			child, err := t.delete(n.children[path[0]], path[1:])
			if err != nil || child == n.children[path[0]] {
				return n, err
			}
			res.children[path[0]] = child
		}
		return t.collapse(res)

	case hashNode:
		resolved, err := t.cache.resolve(common.Hash(n))
		if err != nil {
			return n, err
		}
		res, err := t.delete(resolved, path)
		if err != nil || res == resolved {
			return n, err
		}
		return res, nil
	}
	panic("unknown node type")
}

// collapse replaces a branch with fewer than two entries by an equivalent
// leaf or extension node.
func (t *Trie) collapse(n *branchNode) (node, error) {
	pos := -1
	for i, child := range n.children {
		if child == nil {
			continue
		}
		if pos >= 0 || n.value != nil {
			return n, nil
		}
		pos = i
	}
	if pos < 0 {
		if n.value == nil {
			return nil, nil
		}
		return &leafNode{path: []Nibble{}, value: n.value}, nil
	}
	return t.merge([]Nibble{Nibble(pos)}, n.children[pos])
}

// merge combines the given path prefix with the node following it.
func (t *Trie) merge(prefix []Nibble, next node) (node, error) {
	if h, ok := next.(hashNode); ok {
		resolved, err := t.cache.resolve(common.Hash(h))
		if err != nil {
			return nil, err
		}
		switch resolved.(type) {
		case *leafNode, *extensionNode:
			next = resolved
		}
	}
	switch next := next.(type) {
	case nil:
		return nil, nil
	case *leafNode:
		return &leafNode{path: concatPaths(prefix, next.path), value: next.value}, nil
	case *extensionNode:
		return &extensionNode{path: concatPaths(prefix, next.path), next: next.next}, nil
	}
	return &extensionNode{path: prefix, next: next}, nil
}

// setValue places a leaf with the given value at the remaining path below
// a freshly created branch.
func (n *branchNode) setValue(path []Nibble, value []byte) {
	if len(path) == 0 {
		n.value = value
		return
	}
	n.children[path[0]] = &leafNode{path: path[1:], value: value}
}

// withPrefix puts an extension with the given path in front of the given
// node, unless the path is empty.
func withPrefix(prefix []Nibble, next node) node {
	if len(prefix) == 0 {
		return next
	}
	return &extensionNode{path: prefix, next: next}
}
