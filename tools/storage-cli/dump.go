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
	"fmt"
	"io"
	"sort"

	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/Fantom-foundation/ContractStorage/go/storage"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var dumpCommand = cli.Command{
	Action: dump,
	Name:   "dump",
	Usage:  "prints all present storage slots of a contract",
	Flags: []cli.Flag{
		&addressFlag,
	},
	ArgsUsage: "<directory>",
}

func dump(context *cli.Context) error {
	return withAccount(&cliContext{context}, func(acc *account) error {
		return printStorage(context.App.Writer, acc.details)
	})
}

// printStorage prints all slots of the given details present in the storage
// ordered by their key.
func printStorage(out io.Writer, details *storage.ContractDetails) error {
	hash, err := details.GetStorageHash()
	if err != nil {
		return err
	}
	values, err := details.GetStorage(nil)
	if err != nil {
		return err
	}
	keys := maps.Keys(values)
	sort.Slice(keys, func(i, j int) bool {
		return common.CompareKeys(keys[i], keys[j]) < 0
	})
	fmt.Fprintf(out, "Storage of %v at %v:\n", details.Address(), hash)
	for _, key := range keys {
		fmt.Fprintf(out, "\t%v: %s\n", key, formatValue(values[key]))
	}
	fmt.Fprintf(out, "%d slot(s) present, %d key(s) ever written\n", len(values), details.GetStorageSize())
	return nil
}
