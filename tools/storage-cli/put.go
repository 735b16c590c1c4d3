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

	"github.com/urfave/cli/v2"
)

var putCommand = cli.Command{
	Action: addPerformanceDiagnoses(put),
	Name:   "put",
	Usage:  "updates a storage slot of a contract",
	Flags: []cli.Flag{
		&addressFlag,
		&keyFlag,
		&valueFlag,
	},
	ArgsUsage: "<directory>",
}

func put(context *cli.Context) error {
	key, err := parseKey(context.String(keyFlag.Name))
	if err != nil {
		return err
	}
	value, err := parseValue(context.String(valueFlag.Name))
	if err != nil {
		return err
	}
	return withAccount(&cliContext{context}, func(acc *account) error {
		if err := acc.details.Put(key, value); err != nil {
			return err
		}
		hash, err := acc.details.GetStorageHash()
		if err != nil {
			return err
		}
		fmt.Fprintf(context.App.Writer, "Storage hash: %v\n", hash)
		return nil
	})
}
