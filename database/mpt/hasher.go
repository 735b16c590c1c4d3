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
	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/Fantom-foundation/ContractStorage/go/database/mpt/rlp"
)

// Node encoding derived from Ethereum.
// see https://github.com/ethereum/go-ethereum/blob/v1.12.0/trie/hasher.go
//
// A leaf is encoded as [compact(path, true), value], an extension as
// [compact(path, false), ref(next)] and a branch as a list of 16 child
// references followed by the value. A child reference is the node's encoding
// itself if it is shorter than 32 bytes, and the hash of the encoding
// otherwise.

// hasher computes commitments of updated nodes. Nodes whose encoding needs
// to be referenced by hash are recorded in the node cache.
type hasher struct {
	cache *NodeCache
}

// hash returns a version of the given node with commitments computed for it
// and all its descendants. Nodes already carrying a commitment are returned
// unchanged, all others are replaced by committed copies.
func (h hasher) hash(n node) node {
	switch n := n.(type) {
	case nil, hashNode:
		return n
	case *leafNode:
		if n.isSet() {
			return n
		}
		res := &leafNode{path: n.path, value: n.value}
		h.commit(&res.commitment, rlp.List{Items: []rlp.Item{
			rlp.String{Str: encodeCompactPath(res.path, true)},
			rlp.String{Str: res.value},
		}})
		return res
	case *extensionNode:
		if n.isSet() {
			return n
		}
		res := &extensionNode{path: n.path, next: h.hash(n.next)}
		h.commit(&res.commitment, rlp.List{Items: []rlp.Item{
			rlp.String{Str: encodeCompactPath(res.path, false)},
			getReference(res.next),
		}})
		return res
	case *branchNode:
		if n.isSet() {
			return n
		}
		res := &branchNode{value: n.value}
		items := make([]rlp.Item, 17)
		for i, child := range n.children {
			res.children[i] = h.hash(child)
			items[i] = getReference(res.children[i])
		}
		items[16] = rlp.String{Str: res.value}
		h.commit(&res.commitment, rlp.List{Items: items})
		return res
	}
	panic("unknown node type")
}

func (h hasher) commit(c *commitment, item rlp.Item) {
	c.encoded = rlp.Encode(item)
	c.hash = common.Keccak256(c.encoded)
	if len(c.encoded) >= common.HashSize {
		h.cache.add(c.hash, c.encoded)
	}
}

// getReference produces the item used for referencing the given committed
// node from within its parent.
func getReference(n node) rlp.Item {
	switch n := n.(type) {
	case nil:
		return rlp.String{}
	case hashNode:
		hash := common.Hash(n)
		return rlp.Hash{Hash: &hash}
	}
	c := getCommitment(n)
	if len(c.encoded) < common.HashSize {
		return rlp.Encoded{Data: c.encoded}
	}
	return rlp.Hash{Hash: &c.hash}
}
