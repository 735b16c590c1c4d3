// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	AddressSize = 20
	KeySize     = 32
	ValueSize   = 32
	HashSize    = 32
)

// Address is the 20-byte identifier of an account.
type Address [AddressSize]byte

// Key addresses a single 256-bit storage slot of a contract.
type Key [KeySize]byte

// Value is the 256-bit content of a storage slot. The all-zero value marks
// an absent slot and is never stored.
type Value [ValueSize]byte

// Hash is a 256-bit cryptographic hash, typically a Keccak256 digest.
type Hash [HashSize]byte

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

// Hex returns the lower-case hex encoding of the address without a prefix.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

func (k Key) String() string {
	return fmt.Sprintf("0x%x", k[:])
}

func (v Value) String() string {
	return fmt.Sprintf("0x%x", v[:])
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

// IsZero returns true if the value is the all-zero word.
func (v Value) IsZero() bool {
	return v == Value{}
}

// TrimmedBytes returns the big-endian representation of the value without
// leading zero bytes. The zero value is represented by an empty slice.
func (v Value) TrimmedBytes() []byte {
	res := v[:]
	for len(res) > 0 && res[0] == 0 {
		res = res[1:]
	}
	return res
}

// ToUint256 interprets the value as a big-endian unsigned integer.
func (v Value) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(v[:])
}

// ValueFromUint256 converts the given integer into its 32-byte big-endian form.
func ValueFromUint256(i *uint256.Int) Value {
	return Value(i.Bytes32())
}

// ValueFromUint64 is a convenience wrapper of ValueFromUint256.
func ValueFromUint64(i uint64) Value {
	return ValueFromUint256(uint256.NewInt(i))
}

// KeyFromUint64 creates a key holding the given number in its lowest bytes.
func KeyFromUint64(i uint64) Key {
	return Key(ValueFromUint64(i))
}

// CompareKeys orders keys by their big-endian byte representation.
func CompareKeys(a, b Key) int {
	for i := 0; i < KeySize; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
