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
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore/memory"
	"github.com/Fantom-foundation/ContractStorage/go/common"
)

func mustDecodeHash(t *testing.T, s string) common.Hash {
	t.Helper()
	var res common.Hash
	data, err := hex.DecodeString(s)
	if err != nil || len(data) != len(res) {
		t.Fatalf("invalid hash %s", s)
	}
	copy(res[:], data)
	return res
}

func putString(t *testing.T, trie *Trie, key, value string) {
	t.Helper()
	if err := trie.Put([]byte(key), []byte(value)); err != nil {
		t.Fatalf("failed to put %s: %v", key, err)
	}
}

func TestTrie_EmptyTrieHasEmptyRootHash(t *testing.T) {
	trie := NewTrie(NewNodeCache())
	if want, got := mustDecodeHash(t, "56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"), trie.Hash(); want != got {
		t.Errorf("unexpected empty root hash, wanted %x, got %x", want, got)
	}
	if want, got := EmptyRootHash, trie.Hash(); want != got {
		t.Errorf("unexpected empty root hash, wanted %x, got %x", want, got)
	}
}

func TestTrie_HashesMatchEthereumReference(t *testing.T) {
	// Reference values as produced by go-ethereum's trie package.
	trie := NewTrie(NewNodeCache())
	putString(t, trie, "doe", "reindeer")
	putString(t, trie, "dog", "puppy")
	putString(t, trie, "dogglesworth", "cat")
	if want, got := mustDecodeHash(t, "8aad789dff2f538bca5d8ea56e8abe10f4c7ba3a5dea95fea4cd6e7c3a1168d3"), trie.Hash(); want != got {
		t.Errorf("unexpected root hash, wanted %x, got %x", want, got)
	}
}

func TestTrie_HashAfterDeletionsMatchesEthereumReference(t *testing.T) {
	updates := []struct{ key, value string }{
		{"do", "verb"},
		{"ether", "wookiedoo"},
		{"horse", "stallion"},
		{"shaman", "horse"},
		{"doge", "coin"},
		{"ether", ""},
		{"dog", "puppy"},
		{"shaman", ""},
	}
	want := mustDecodeHash(t, "5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84")

	t.Run("put with empty value", func(t *testing.T) {
		trie := NewTrie(NewNodeCache())
		for _, update := range updates {
			putString(t, trie, update.key, update.value)
		}
		if got := trie.Hash(); want != got {
			t.Errorf("unexpected root hash, wanted %x, got %x", want, got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		trie := NewTrie(NewNodeCache())
		for _, update := range updates {
			if update.value == "" {
				if err := trie.Delete([]byte(update.key)); err != nil {
					t.Fatalf("failed to delete %s: %v", update.key, err)
				}
			} else {
				putString(t, trie, update.key, update.value)
			}
		}
		if got := trie.Hash(); want != got {
			t.Errorf("unexpected root hash, wanted %x, got %x", want, got)
		}
	})
}

func TestTrie_ValuesCanBeRetrieved(t *testing.T) {
	trie := NewTrie(NewNodeCache())
	putString(t, trie, "doe", "reindeer")
	putString(t, trie, "dog", "puppy")
	putString(t, trie, "dogglesworth", "cat")
	putString(t, trie, "do", "verb")

	tests := map[string]string{
		"doe":          "reindeer",
		"dog":          "puppy",
		"dogglesworth": "cat",
		"do":           "verb",
		"d":            "",
		"dogg":         "",
		"unknown":      "",
	}
	for key, want := range tests {
		got, err := trie.Get([]byte(key))
		if err != nil {
			t.Fatalf("failed to get %s: %v", key, err)
		}
		if want != string(got) {
			t.Errorf("unexpected value for %s, wanted %q, got %q", key, want, got)
		}
		if want == "" && got != nil {
			t.Errorf("missing key %s should produce nil", key)
		}
	}
}

func TestTrie_ReturnedValuesAreCopies(t *testing.T) {
	trie := NewTrie(NewNodeCache())
	value := []byte{1, 2, 3}
	if err := trie.Put([]byte{1}, value); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}
	value[0] = 9
	got, _ := trie.Get([]byte{1})
	got[1] = 9
	if again, _ := trie.Get([]byte{1}); !bytes.Equal(again, []byte{1, 2, 3}) {
		t.Errorf("trie content was modified through external buffers: %x", again)
	}
}

func TestTrie_UpdatingWithSameValueKeepsRootNode(t *testing.T) {
	trie := NewTrie(NewNodeCache())
	putString(t, trie, "key", "value")
	putString(t, trie, "other", "value")
	hash := trie.Hash()
	root := trie.root
	putString(t, trie, "key", "value")
	if trie.root != root {
		t.Errorf("re-inserting an existing value should not modify the trie")
	}
	if err := trie.Delete([]byte("missing")); err != nil {
		t.Fatalf("failed to delete missing key: %v", err)
	}
	if trie.root != root {
		t.Errorf("deleting a missing key should not modify the trie")
	}
	if want, got := hash, trie.Hash(); want != got {
		t.Errorf("hash changed, wanted %x, got %x", want, got)
	}
}

func TestTrie_DeletingAllKeysProducesEmptyTrie(t *testing.T) {
	trie := NewTrie(NewNodeCache())
	keys := []string{"a", "ab", "abc", "b", "bcd", "x"}
	for _, key := range keys {
		putString(t, trie, key, "value-"+key)
	}
	trie.Hash()
	for _, key := range keys {
		if err := trie.Delete([]byte(key)); err != nil {
			t.Fatalf("failed to delete %s: %v", key, err)
		}
	}
	if trie.root != nil {
		t.Errorf("trie should be empty, got %v", trie.root)
	}
	if want, got := EmptyRootHash, trie.Hash(); want != got {
		t.Errorf("unexpected root hash, wanted %x, got %x", want, got)
	}
}

func TestTrie_HashIsIndependentOfInsertionOrder(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	keys := make([][]byte, 200)
	for i := range keys {
		keys[i] = make([]byte, 1+r.Intn(8))
		r.Read(keys[i])
	}

	var reference common.Hash
	for round := 0; round < 5; round++ {
		trie := NewTrie(NewNodeCache())
		for _, i := range r.Perm(len(keys)) {
			if err := trie.Put(keys[i], append([]byte("v"), keys[i]...)); err != nil {
				t.Fatalf("failed to put key: %v", err)
			}
		}
		hash := trie.Hash()
		if round == 0 {
			reference = hash
		} else if reference != hash {
			t.Errorf("hash depends on insertion order, wanted %x, got %x", reference, hash)
		}
	}
}

func TestTrie_RandomUpdatesMatchReferenceMap(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	trie := NewTrie(NewNodeCache())
	reference := map[string][]byte{}

	for i := 0; i < 2000; i++ {
		key := []byte{byte(r.Intn(4)), byte(r.Intn(16)), byte(r.Intn(256))}
		key = key[:1+r.Intn(3)]
		if r.Intn(3) == 0 {
			if err := trie.Delete(key); err != nil {
				t.Fatalf("failed to delete key: %v", err)
			}
			delete(reference, string(key))
		} else {
			value := []byte(fmt.Sprintf("value-%d", i))
			if err := trie.Put(key, value); err != nil {
				t.Fatalf("failed to put key: %v", err)
			}
			reference[string(key)] = value
		}
		if i%100 == 0 {
			trie.Hash()
		}
	}

	for key, want := range reference {
		got, err := trie.Get([]byte(key))
		if err != nil {
			t.Fatalf("failed to get key: %v", err)
		}
		if !bytes.Equal(want, got) {
			t.Errorf("unexpected value for %x, wanted %x, got %x", key, want, got)
		}
	}

	// a trie built from scratch with the final content has the same hash
	fresh := NewTrie(NewNodeCache())
	for key, value := range reference {
		if err := fresh.Put([]byte(key), value); err != nil {
			t.Fatalf("failed to put key: %v", err)
		}
	}
	if want, got := fresh.Hash(), trie.Hash(); want != got {
		t.Errorf("unexpected hash after random updates, wanted %x, got %x", want, got)
	}
}

func TestTrie_CanBeReopenedAtCommittedRoot(t *testing.T) {
	cache := NewNodeCache()
	trie := NewTrie(cache)
	for i := 0; i < 100; i++ {
		putString(t, trie, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
	}
	root := trie.Hash()

	reopened, err := OpenTrie(cache, root)
	if err != nil {
		t.Fatalf("failed to open trie: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := reopened.Get([]byte(fmt.Sprintf("key-%d", i)))
		if err != nil {
			t.Fatalf("failed to get key: %v", err)
		}
		if want := fmt.Sprintf("value-%d", i); want != string(got) {
			t.Errorf("unexpected value, wanted %s, got %s", want, got)
		}
	}
	if want, got := root, reopened.Hash(); want != got {
		t.Errorf("unexpected hash of reopened trie, wanted %x, got %x", want, got)
	}
}

func TestTrie_SmallRootCanBeReopened(t *testing.T) {
	cache := NewNodeCache()
	trie := NewTrie(cache)
	putString(t, trie, "a", "b")
	root := trie.Hash()
	if got := getCommitment(trie.root); len(got.encoded) >= common.HashSize {
		t.Fatalf("test requires an embeddable root, got %d bytes", len(got.encoded))
	}
	reopened, err := OpenTrie(cache, root)
	if err != nil {
		t.Fatalf("failed to open trie: %v", err)
	}
	if got, _ := reopened.Get([]byte("a")); string(got) != "b" {
		t.Errorf("unexpected value, got %q", got)
	}
}

func TestTrie_OpeningAtEmptyRootProducesEmptyTrie(t *testing.T) {
	trie, err := OpenTrie(NewNodeCache(), EmptyRootHash)
	if err != nil {
		t.Fatalf("failed to open empty trie: %v", err)
	}
	if want, got := NewTrie(NewNodeCache()).Hash(), trie.Hash(); want != got {
		t.Errorf("unexpected hash, wanted %x, got %x", want, got)
	}
}

func TestTrie_OpeningAtUnknownRootFails(t *testing.T) {
	_, err := OpenTrie(NewNodeCache(), common.Hash{1, 2, 3})
	if !errors.Is(err, ErrMissingNode) {
		t.Errorf("expected missing node error, got %v", err)
	}
}

func TestTrie_HandlesOnSharedCacheAreIndependent(t *testing.T) {
	cache := NewNodeCache()
	a := NewTrie(cache)
	putString(t, a, "shared", "value")
	root := a.Hash()

	b, err := OpenTrie(cache, root)
	if err != nil {
		t.Fatalf("failed to open trie: %v", err)
	}
	c := a.Copy()

	putString(t, a, "a", "1")
	putString(t, b, "b", "2")
	if err := c.Delete([]byte("shared")); err != nil {
		t.Fatalf("failed to delete key: %v", err)
	}

	check := func(trie *Trie, key string, want string) {
		t.Helper()
		got, err := trie.Get([]byte(key))
		if err != nil {
			t.Fatalf("failed to get key: %v", err)
		}
		if want != string(got) {
			t.Errorf("unexpected value for %s, wanted %q, got %q", key, want, got)
		}
	}
	check(a, "shared", "value")
	check(a, "a", "1")
	check(a, "b", "")
	check(b, "shared", "value")
	check(b, "a", "")
	check(b, "b", "2")
	check(c, "shared", "")
	check(c, "a", "")

	if a.Hash() == b.Hash() || a.Hash() == root || b.Hash() == root {
		t.Errorf("diverged tries should have distinct hashes")
	}
	if want, got := EmptyRootHash, c.Hash(); want != got {
		t.Errorf("unexpected hash of emptied trie, wanted %x, got %x", want, got)
	}
}

func TestTrie_NodesAreLoadedFromBackingStore(t *testing.T) {
	store := memory.NewStore()
	cache := NewNodeCache()
	cache.SetSource(store)
	trie := NewTrie(cache)
	for i := 0; i < 50; i++ {
		putString(t, trie, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
	}
	root := trie.Hash()
	if _, err := trie.WriteTo(store); err != nil {
		t.Fatalf("failed to write nodes: %v", err)
	}

	fresh := NewNodeCache()
	fresh.SetSource(store)
	reopened, err := OpenTrie(fresh, root)
	if err != nil {
		t.Fatalf("failed to open trie: %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := reopened.Get([]byte(fmt.Sprintf("key-%d", i)))
		if err != nil {
			t.Fatalf("failed to get key: %v", err)
		}
		if want := fmt.Sprintf("value-%d", i); want != string(got) {
			t.Errorf("unexpected value, wanted %s, got %s", want, got)
		}
	}
}

func TestTrie_MissingInnerNodesAreReported(t *testing.T) {
	store := memory.NewStore()
	cache := NewNodeCache()
	cache.SetSource(store)
	trie := NewTrie(cache)
	for i := 0; i < 50; i++ {
		putString(t, trie, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
	}
	root := trie.Hash()
	if _, err := trie.WriteTo(store); err != nil {
		t.Fatalf("failed to write nodes: %v", err)
	}

	// remove everything but the root node from the store
	var keys [][]byte
	store.ForEach(func(key, _ []byte) {
		if !bytes.Equal(key, root[:]) {
			keys = append(keys, key)
		}
	})
	for _, key := range keys {
		if err := store.Delete(key); err != nil {
			t.Fatalf("failed to delete node: %v", err)
		}
	}

	fresh := NewNodeCache()
	fresh.SetSource(store)
	reopened, err := OpenTrie(fresh, root)
	if err != nil {
		t.Fatalf("failed to open trie: %v", err)
	}
	if _, err := reopened.Get([]byte("key-1")); !errors.Is(err, ErrMissingNode) {
		t.Errorf("expected missing node error on get, got %v", err)
	}
	if err := reopened.Put([]byte("key-1"), []byte("x")); !errors.Is(err, ErrMissingNode) {
		t.Errorf("expected missing node error on put, got %v", err)
	}
	if want, got := root, reopened.Hash(); want != got {
		t.Errorf("failed update should not modify the trie, wanted %x, got %x", want, got)
	}
}
