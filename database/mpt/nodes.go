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
	"strings"

	"github.com/Fantom-foundation/ContractStorage/go/common"
)

// node is an element of a trie. Nodes are immutable once created. Updates
// produce new nodes along the modified path and share all untouched
// sub-trees with the previous version. This allows any number of tries to
// reference the same nodes without synchronization.
//
// The implementations are *leafNode, *extensionNode, *branchNode, and
// hashNode. An empty trie is represented by a nil node.
type node interface {
	fmt.Stringer
}

// commitment holds the RLP encoding and its hash of a node. It is only set
// for nodes that have been hashed or decoded. Nodes created by updates start
// without a commitment.
type commitment struct {
	encoded []byte
	hash    common.Hash
}

func (c *commitment) isSet() bool {
	return c.encoded != nil
}

// leafNode is a node holding a value at the end of a path.
type leafNode struct {
	path  []Nibble
	value []byte
	commitment
}

// extensionNode is a node shortcutting a path shared by all keys below it.
// Its next node is always a branch node or a reference to one.
type extensionNode struct {
	path []Nibble
	next node
	commitment
}

// branchNode is a node with 16 children, one for each nibble, and an
// optional value for a key ending at this node.
type branchNode struct {
	children [16]node
	value    []byte
	commitment
}

// hashNode is a reference to a node identified by its hash which has not
// been resolved from the node cache yet.
type hashNode common.Hash

func (n *leafNode) String() string {
	return fmt.Sprintf("Leaf[%v]: %x", pathToString(n.path), n.value)
}

func (n *extensionNode) String() string {
	return fmt.Sprintf("Extension[%v] -> %v", pathToString(n.path), n.next)
}

func (n *branchNode) String() string {
	var builder strings.Builder
	builder.WriteString("Branch{")
	first := true
	for i, child := range n.children {
		if child == nil {
			continue
		}
		if !first {
			builder.WriteString(", ")
		}
		first = false
		builder.WriteString(fmt.Sprintf("%v: %v", Nibble(i), child))
	}
	if n.value != nil {
		builder.WriteString(fmt.Sprintf("; value: %x", n.value))
	}
	builder.WriteString("}")
	return builder.String()
}

func (n hashNode) String() string {
	return fmt.Sprintf("Ref(%x)", n[:])
}

// copy creates an uncommitted copy of the branch sharing all children.
func (n *branchNode) copy() *branchNode {
	return &branchNode{children: n.children, value: n.value}
}

func pathToString(path []Nibble) string {
	var builder strings.Builder
	for _, n := range path {
		builder.WriteRune(n.Rune())
	}
	return builder.String()
}

// getCommitment returns the commitment of the given node, nil if it has none.
func getCommitment(n node) *commitment {
	switch n := n.(type) {
	case *leafNode:
		return &n.commitment
	case *extensionNode:
		return &n.commitment
	case *branchNode:
		return &n.commitment
	}
	return nil
}

// forEachReference visits the hashes of all nodes referenced by hash from the
// given node, including references held by embedded children.
func forEachReference(n node, visit func(common.Hash) error) error {
	switch n := n.(type) {
	case hashNode:
		return visit(common.Hash(n))
	case *extensionNode:
		return forEachReference(n.next, visit)
	case *branchNode:
		for _, child := range n.children {
			if err := forEachReference(child, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
