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

import "testing"

func TestNibble_Print(t *testing.T) {
	tests := []struct {
		value Nibble
		print string
	}{
		{Nibble(0), "0"},
		{Nibble(9), "9"},
		{Nibble(10), "a"},
		{Nibble(15), "f"},
		{Nibble(16), "?"},
		{Nibble(255), "?"},
	}

	for _, test := range tests {
		if got, want := test.value.String(), test.print; got != want {
			t.Errorf("invalid print, got %s, wanted %s", got, want)
		}
	}
}

func TestNibbles_ToNibblePath(t *testing.T) {
	got := ToNibblePath([]byte{0x12, 0xAB})
	want := []Nibble{1, 2, 0xA, 0xB}
	if len(got) != len(want) {
		t.Fatalf("unexpected path length, wanted %d, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("unexpected nibble at %d, wanted %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNibbles_GetCommonPrefix(t *testing.T) {
	tests := []struct {
		a, b []Nibble
		res  int
	}{
		{[]Nibble{}, []Nibble{}, 0},
		{[]Nibble{}, []Nibble{1}, 0},
		{[]Nibble{1}, []Nibble{}, 0},
		{[]Nibble{1}, []Nibble{1}, 1},
		{[]Nibble{1, 2}, []Nibble{1, 2}, 2},
		{[]Nibble{1, 2, 3}, []Nibble{1, 2, 4}, 2},
		{[]Nibble{1, 2, 3}, []Nibble{2, 2, 3}, 0},
		{[]Nibble{1, 2}, []Nibble{1, 2, 3, 4}, 2},
	}

	for _, test := range tests {
		if got, want := GetCommonPrefixLength(test.a, test.b), test.res; got != want {
			t.Errorf("invalid common prefix of %v and %v, wanted %d, got %d", test.a, test.b, want, got)
		}
		if got, want := IsPrefixOf(test.a, test.b), test.res == len(test.a); got != want {
			t.Errorf("invalid prefix test of %v and %v, wanted %t, got %t", test.a, test.b, want, got)
		}
	}
}

func TestNibbles_CompactPathEncoding(t *testing.T) {
	tests := []struct {
		path        []Nibble
		terminating bool
		compact     []byte
	}{
		// examples from the Ethereum yellow paper, appendix C
		{[]Nibble{1, 2, 3, 4, 5}, false, []byte{0x11, 0x23, 0x45}},
		{[]Nibble{0, 1, 2, 3, 4, 5}, false, []byte{0x00, 0x01, 0x23, 0x45}},
		{[]Nibble{0, 0xf, 1, 0xc, 0xb, 8}, true, []byte{0x20, 0x0f, 0x1c, 0xb8}},
		{[]Nibble{0xf, 1, 0xc, 0xb, 8}, true, []byte{0x3f, 0x1c, 0xb8}},
		{[]Nibble{}, false, []byte{0x00}},
		{[]Nibble{}, true, []byte{0x20}},
	}

	for _, test := range tests {
		compact := encodeCompactPath(test.path, test.terminating)
		if string(compact) != string(test.compact) {
			t.Errorf("invalid encoding of %v, wanted %x, got %x", test.path, test.compact, compact)
		}
		path, terminating, err := decodeCompactPath(compact)
		if err != nil {
			t.Fatalf("failed to decode %x: %v", compact, err)
		}
		if terminating != test.terminating {
			t.Errorf("invalid terminating flag for %x", compact)
		}
		if GetCommonPrefixLength(path, test.path) != len(test.path) || len(path) != len(test.path) {
			t.Errorf("invalid decoded path, wanted %v, got %v", test.path, path)
		}
	}
}

func TestNibbles_InvalidCompactPathsAreDetected(t *testing.T) {
	tests := [][]byte{
		{},
		{0x40},
		{0x01, 0x23},
		{0x25},
	}
	for _, test := range tests {
		if _, _, err := decodeCompactPath(test); err == nil {
			t.Errorf("expected decoding of %x to fail", test)
		}
	}
}
