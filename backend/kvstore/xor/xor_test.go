// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package xor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore"
	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore/memory"
	"github.com/Fantom-foundation/ContractStorage/go/common"
	"go.uber.org/mock/gomock"
)

func TestStore_IsKvStore(t *testing.T) {
	var s Store
	var _ kvstore.Store = &s
}

func TestStore_RoundTripsValues(t *testing.T) {
	s := New(memory.NewStore(), []byte{0x0F, 0xF0})
	key := []byte{1, 2, 3}
	value := []byte{4, 5, 6, 7, 8}
	if err := s.Put(key, value); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}
	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("failed to get value: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("unexpected value, wanted %x, got %x", value, got)
	}
	if err := s.Delete(key); err != nil {
		t.Fatalf("failed to delete value: %v", err)
	}
	if got, _ := s.Get(key); got != nil {
		t.Errorf("deleted value still present: %x", got)
	}
}

func TestStore_BytesInBackendAreMaskedWithRepeatingPattern(t *testing.T) {
	backend := memory.NewStore()
	s := New(backend, []byte{0xFF, 0x00})
	if err := s.Put([]byte{0x01, 0x02, 0x03}, []byte{0x10, 0x20, 0x30}); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}
	stored, err := backend.Get([]byte{0xFE, 0x02, 0xFC})
	if err != nil {
		t.Fatalf("failed to read backend: %v", err)
	}
	if want, got := []byte{0xEF, 0x20, 0xCF}, stored; !bytes.Equal(want, got) {
		t.Errorf("unexpected masked value, wanted %x, got %x", want, got)
	}
	if got, _ := backend.Get([]byte{0x01, 0x02, 0x03}); got != nil {
		t.Errorf("unmasked key should not be present in backend")
	}
}

func TestStore_DifferentMasksDoNotInterfere(t *testing.T) {
	backend := memory.NewStore()
	a := New(backend, MaskFor(DetailsStorageNamespace, common.Address{1}))
	b := New(backend, MaskFor(DetailsStorageNamespace, common.Address{2}))
	key := []byte{1, 2, 3, 4}
	if err := a.Put(key, []byte{1}); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}
	if err := b.Put(key, []byte{2}); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}
	if got, _ := a.Get(key); !bytes.Equal(got, []byte{1}) {
		t.Errorf("unexpected value seen through first adapter: %x", got)
	}
	if got, _ := b.Get(key); !bytes.Equal(got, []byte{2}) {
		t.Errorf("unexpected value seen through second adapter: %x", got)
	}
}

func TestMaskFor_IsHashOfNamespaceAndHexAddress(t *testing.T) {
	address := common.Address{0xAA, 0xBB}
	want := common.Keccak256([]byte("details-storage/aabb000000000000000000000000000000000000"))
	if got := MaskFor(DetailsStorageNamespace, address); !bytes.Equal(want[:], got) {
		t.Errorf("unexpected mask, wanted %x, got %x", want, got)
	}
	if bytes.Equal(MaskFor("a/", address), MaskFor("b/", address)) {
		t.Errorf("different namespaces should produce different masks")
	}
}

func TestNew_EmptyMaskIsRejected(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("empty mask should cause a panic")
		}
	}()
	New(memory.NewStore(), nil)
}

func TestStore_BackendErrorsArePropagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := kvstore.NewMockStore(ctrl)
	injectedErr := errors.New("injected")
	backend.EXPECT().Get(gomock.Any()).Return(nil, injectedErr)
	backend.EXPECT().Put(gomock.Any(), gomock.Any()).Return(injectedErr)
	backend.EXPECT().Delete(gomock.Any()).Return(injectedErr)

	s := New(backend, []byte{1})
	if _, err := s.Get([]byte{1}); !errors.Is(err, injectedErr) {
		t.Errorf("Get should propagate backend error, got %v", err)
	}
	if err := s.Put([]byte{1}, []byte{2}); !errors.Is(err, injectedErr) {
		t.Errorf("Put should propagate backend error, got %v", err)
	}
	if err := s.Delete([]byte{1}); !errors.Is(err, injectedErr) {
		t.Errorf("Delete should propagate backend error, got %v", err)
	}
}

func TestStore_MissingEntriesAreReportedAsNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := kvstore.NewMockStore(ctrl)
	backend.EXPECT().Get([]byte{0x0F ^ 0x01}).Return(nil, nil)

	s := New(backend, []byte{0x0F})
	got, err := s.Get([]byte{0x01})
	if err != nil || got != nil {
		t.Errorf("missing entry should produce nil, nil; got %x, %v", got, err)
	}
}
