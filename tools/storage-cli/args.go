// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var (
	addressFlag = cli.StringFlag{
		Name:     "address",
		Usage:    "the hex encoded address of the contract",
		Required: true,
	}
	keyFlag = cli.StringFlag{
		Name:     "key",
		Usage:    "the storage key, decimal or 0x-prefixed hex",
		Required: true,
	}
	valueFlag = cli.StringFlag{
		Name:     "value",
		Usage:    "the storage value, decimal or 0x-prefixed hex; zero deletes the slot",
		Required: true,
	}
	rootFlag = cli.StringFlag{
		Name:     "root",
		Usage:    "the hex encoded storage root",
		Required: true,
	}
)

// cliContext extends the context of a command with accessors for the
// arguments shared by all commands.
type cliContext struct {
	*cli.Context
}

func (c *cliContext) getAccountLocation() (string, common.Address, error) {
	if c.Args().Len() != 1 {
		return "", common.Address{}, fmt.Errorf("missing directory storing contract storage")
	}
	address, err := parseAddress(c.String(addressFlag.Name))
	return c.Args().Get(0), address, err
}

func parseAddress(s string) (common.Address, error) {
	var res common.Address
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return res, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(data) != len(res) {
		return res, fmt.Errorf("invalid address %q: expected %d bytes, got %d", s, len(res), len(data))
	}
	copy(res[:], data)
	return res, nil
}

func parseHash(s string) (common.Hash, error) {
	var res common.Hash
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return res, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(data) != len(res) {
		return res, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, len(res), len(data))
	}
	copy(res[:], data)
	return res, nil
}

func formatHash(hash common.Hash) string {
	return hex.EncodeToString(hash[:])
}

// parseWord parses a 256-bit unsigned integer in decimal or 0x-prefixed hex
// notation.
func parseWord(s string) (*uint256.Int, error) {
	i, ok := new(big.Int).SetString(s, 0)
	if !ok || i.Sign() < 0 {
		return nil, fmt.Errorf("invalid 256-bit word %q", s)
	}
	res, overflow := uint256.FromBig(i)
	if overflow {
		return nil, fmt.Errorf("invalid 256-bit word %q: value exceeds 256 bits", s)
	}
	return res, nil
}

func parseKey(s string) (common.Key, error) {
	word, err := parseWord(s)
	if err != nil {
		return common.Key{}, err
	}
	return common.Key(word.Bytes32()), nil
}

func parseValue(s string) (common.Value, error) {
	word, err := parseWord(s)
	if err != nil {
		return common.Value{}, err
	}
	return common.ValueFromUint256(word), nil
}

func formatValue(value common.Value) string {
	return fmt.Sprintf("0x%x (%v)", value[:], value.ToUint256().ToBig())
}
