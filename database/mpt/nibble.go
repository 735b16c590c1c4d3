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

// Nibble is a 4-bit unsigned integer in the range 0-F. It is a single letter
// used to navigate in the MPT structure.
type Nibble byte

// Rune converts a Nibble in a hexa-decimal rune (0-9a-f).
func (n Nibble) Rune() rune {
	if n < 10 {
		return rune('0' + n)
	} else if n < 16 {
		return rune('a' + n - 10)
	} else {
		return '?'
	}
}

// String converts a Nibble in a hexa-decimal string (0-9a-f).
func (n Nibble) String() string {
	return string(n.Rune())
}

// ToNibblePath converts the given key into a slice of Nibbles, high nibble
// of each byte first.
func ToNibblePath(key []byte) []Nibble {
	res := make([]Nibble, len(key)*2)
	parseNibbles(res, key)
	return res
}

func parseNibbles(dst []Nibble, src []byte) {
	for i := 0; i < len(src); i++ {
		dst[2*i] = Nibble(src[i] >> 4)
		dst[2*i+1] = Nibble(src[i] & 0xF)
	}
}

// GetCommonPrefixLength computes the length of the common prefix of the given
// Nibble-slices.
func GetCommonPrefixLength(a, b []Nibble) int {
	lengthA := len(a)
	if lengthA > len(b) {
		return GetCommonPrefixLength(b, a)
	}
	for i := 0; i < lengthA; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return lengthA
}

// IsPrefixOf tests whether one Nibble slice is the prefix of another.
func IsPrefixOf(a, b []Nibble) bool {
	return len(a) <= len(b) && GetCommonPrefixLength(a, b) == len(a)
}

// concatPaths creates a new path consisting of a followed by b. The result
// does not share memory with the inputs.
func concatPaths(a, b []Nibble) []Nibble {
	res := make([]Nibble, 0, len(a)+len(b))
	res = append(res, a...)
	return append(res, b...)
}

// encodeCompactPath produces the compact (hex-prefix) encoding of the given
// path as used by Ethereum. The high nibble of the first byte encodes whether
// the path terminates in a value and whether its length is odd.
func encodeCompactPath(path []Nibble, terminating bool) []byte {
	compact := make([]byte, len(path)/2+1)
	if terminating {
		compact[0] = 1 << 5
	}
	if len(path)%2 == 1 {
		compact[0] |= 1<<4 | byte(path[0])
		path = path[1:]
	}
	for i := 0; i+1 < len(path); i += 2 {
		compact[i/2+1] = byte(path[i])<<4 | byte(path[i+1])
	}
	return compact
}

// decodeCompactPath is the inverse of encodeCompactPath.
func decodeCompactPath(compact []byte) (path []Nibble, terminating bool, err error) {
	if len(compact) == 0 {
		return nil, false, errInvalidPath
	}
	flags := compact[0] >> 4
	if flags > 3 {
		return nil, false, errInvalidPath
	}
	terminating = flags&2 != 0
	path = make([]Nibble, 0, 2*len(compact))
	if flags&1 != 0 {
		path = append(path, Nibble(compact[0]&0xF))
	} else if compact[0]&0xF != 0 {
		return nil, false, errInvalidPath
	}
	for _, b := range compact[1:] {
		path = append(path, Nibble(b>>4), Nibble(b&0xF))
	}
	return path, terminating, nil
}
