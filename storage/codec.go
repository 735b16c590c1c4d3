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
	"fmt"

	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/Fantom-foundation/ContractStorage/go/database/mpt/rlp"
)

// EncodeValue produces the representation of a storage value kept in the
// storage trie: an RLP string of the value's big-endian bytes without leading
// zeros. This is the encoding used by Ethereum's storage tries.
func EncodeValue(value common.Value) []byte {
	return rlp.Encode(rlp.String{Str: value.TrimmedBytes()})
}

// DecodeValue is the inverse of EncodeValue.
func DecodeValue(data []byte) (common.Value, error) {
	var res common.Value
	item, err := rlp.Decode(data)
	if err != nil {
		return res, fmt.Errorf("invalid value encoding: %w", err)
	}
	str, ok := item.(rlp.String)
	if !ok {
		return res, fmt.Errorf("invalid value encoding: got: %T, wanted: String", item)
	}
	if len(str.Str) > common.ValueSize {
		return res, fmt.Errorf("invalid value encoding: %d bytes exceed value size", len(str.Str))
	}
	copy(res[common.ValueSize-len(str.Str):], str.Str)
	return res, nil
}
