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
	"testing"

	"github.com/Fantom-foundation/ContractStorage/go/common"
)

func TestKeySet_KeysAreListedInOrder(t *testing.T) {
	set := newKeySet()
	for _, i := range []uint64{5, 1, 300, 2, 1, 70} {
		set = set.Add(common.KeyFromUint64(i))
	}
	want := []common.Key{
		common.KeyFromUint64(1),
		common.KeyFromUint64(2),
		common.KeyFromUint64(5),
		common.KeyFromUint64(70),
		common.KeyFromUint64(300),
	}
	got := sortedKeys(set)
	if len(want) != len(got) {
		t.Fatalf("unexpected keys, wanted %v, got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("unexpected key at position %d, wanted %v, got %v", i, want[i], got[i])
		}
	}
}

func TestKeySet_AddDoesNotModifyOriginal(t *testing.T) {
	original := newKeySet(key1)
	modified := original.Add(key2)
	if want, got := 1, original.Len(); want != got {
		t.Errorf("unexpected size of original, wanted %d, got %d", want, got)
	}
	if original.Has(key2) {
		t.Errorf("key added to derived set is visible in original")
	}
	if !modified.Has(key1) || !modified.Has(key2) {
		t.Errorf("derived set is missing keys")
	}
}

func TestKeySet_EmptySetHasNoKeys(t *testing.T) {
	set := newKeySet()
	if want, got := 0, set.Len(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
	if got := sortedKeys(set); len(got) != 0 {
		t.Errorf("unexpected keys %v", got)
	}
}
