// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package storage

import (
	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/benbjohnson/immutable"
)

// keySet is a persistent ordered set of storage keys. Adding a key produces
// a new set sharing structure with the original, which remains unchanged.
type keySet = immutable.SortedSet[common.Key]

type keyComparer struct{}

func (keyComparer) Compare(a, b common.Key) int {
	return common.CompareKeys(a, b)
}

func newKeySet(keys ...common.Key) keySet {
	return immutable.NewSortedSet[common.Key](keyComparer{}, keys...)
}

// sortedKeys lists the keys of the given set in ascending order.
func sortedKeys(set keySet) []common.Key {
	res := make([]common.Key, 0, set.Len())
	it := set.Iterator()
	for !it.Done() {
		key, _ := it.Next()
		res = append(res, key)
	}
	return res
}
