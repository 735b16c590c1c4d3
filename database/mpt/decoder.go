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

	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/Fantom-foundation/ContractStorage/go/database/mpt/rlp"
)

const errInvalidPath = common.ConstError("invalid compact path encoding")

// decodeNode parses the RLP encoding of a node. Children referenced by hash
// are returned as hashNodes, embedded children are decoded recursively. The
// resulting nodes reference the given encoding, which must thus not be
// modified afterwards.
func decodeNode(encoded []byte) (node, error) {
	item, err := rlp.Decode(encoded)
	if err != nil {
		return nil, err
	}
	return decodeNodeFromRlp(item, encoded)
}

func decodeNodeFromRlp(item rlp.Item, encoded []byte) (node, error) {
	list, ok := item.(rlp.List)
	if !ok {
		return nil, fmt.Errorf("invalid node type: got: %T, wanted: List", item)
	}
	c := commitment{encoded: encoded, hash: common.Keccak256(encoded)}

	switch len(list.Items) {
	case 2:
		compact, ok := list.Items[0].(rlp.String)
		if !ok {
			return nil, fmt.Errorf("invalid path type: got: %T, wanted: String", list.Items[0])
		}
		path, terminating, err := decodeCompactPath(compact.Str)
		if err != nil {
			return nil, err
		}
		if terminating {
			value, ok := list.Items[1].(rlp.String)
			if !ok {
				return nil, fmt.Errorf("invalid leaf value type: got: %T, wanted: String", list.Items[1])
			}
			return &leafNode{path: path, value: value.Str, commitment: c}, nil
		}
		if len(path) == 0 {
			return nil, fmt.Errorf("invalid extension node with empty path")
		}
		next, err := decodeReference(list.Items[1])
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("invalid extension node without successor")
		}
		return &extensionNode{path: path, next: next, commitment: c}, nil

	case 17:
		res := &branchNode{commitment: c}
		for i := 0; i < 16; i++ {
			child, err := decodeReference(list.Items[i])
			if err != nil {
				return nil, err
			}
			res.children[i] = child
		}
		value, ok := list.Items[16].(rlp.String)
		if !ok {
			return nil, fmt.Errorf("invalid branch value type: got: %T, wanted: String", list.Items[16])
		}
		if len(value.Str) > 0 {
			res.value = value.Str
		}
		return res, nil
	}

	return nil, fmt.Errorf("invalid number of node items: got: %d, wanted: 2 or 17", len(list.Items))
}

// decodeReference decodes a child reference, which is either empty, a
// 32-byte hash, or an embedded node.
func decodeReference(item rlp.Item) (node, error) {
	switch n := item.(type) {
	case rlp.String:
		switch len(n.Str) {
		case 0:
			return nil, nil
		case common.HashSize:
			return hashNode(n.Str), nil
		}
		return nil, fmt.Errorf("invalid node reference length: got: %d, wanted: 0 or %d", len(n.Str), common.HashSize)
	case rlp.List:
		encoded := rlp.Encode(n)
		if len(encoded) >= common.HashSize {
			return nil, fmt.Errorf("embedded node exceeds %d bytes", common.HashSize-1)
		}
		return decodeNodeFromRlp(n, encoded)
	}
	return nil, fmt.Errorf("invalid node reference type: %T", item)
}
