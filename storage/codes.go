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
	"github.com/Fantom-foundation/ContractStorage/go/common/immutable"
)

// EmptyCodeHash is the hash of the empty code.
var EmptyCodeHash = common.Keccak256([]byte{})

// GetCode returns the code with the given hash, nil if it is unknown. The
// empty code is always known.
func (d *ContractDetails) GetCode(hash common.Hash) []byte {
	if hash == EmptyCodeHash {
		return []byte{}
	}
	code, found := d.codes[hash]
	if !found {
		return nil
	}
	return code.ToBytes()
}

// GetCodeSize returns the length of the code with the given hash, 0 if the
// code is unknown.
func (d *ContractDetails) GetCodeSize(hash common.Hash) int {
	return d.codes[hash].Len()
}

// SetCode registers the given code and returns its hash.
func (d *ContractDetails) SetCode(code []byte) common.Hash {
	hash := common.Keccak256(code)
	d.codes[hash] = immutable.NewBytes(code)
	d.touch()
	return hash
}

// GetCodes returns a copy of all codes registered for this account indexed
// by their hash.
func (d *ContractDetails) GetCodes() map[common.Hash][]byte {
	res := make(map[common.Hash][]byte, len(d.codes))
	for hash, code := range d.codes {
		res[hash] = code.ToBytes()
	}
	return res
}

// SetCodes replaces all codes of this account by the given codes. The keys
// of the map are used as the hashes of the codes without verification.
func (d *ContractDetails) SetCodes(codes map[common.Hash][]byte) {
	d.codes = make(map[common.Hash]immutable.Bytes, len(codes))
	d.AppendCodes(codes)
}

// AppendCodes adds the given codes to the codes of this account.
func (d *ContractDetails) AppendCodes(codes map[common.Hash][]byte) {
	for hash, code := range codes {
		d.codes[hash] = immutable.NewBytes(code)
	}
	d.touch()
}
