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

var getCommand = cli.Command{
	Action: get,
	Name:   "get",
	Usage:  "prints the value of a storage slot of a contract",
	Flags: []cli.Flag{
		&addressFlag,
		&keyFlag,
	},
	ArgsUsage: "<directory>",
}

func get(context *cli.Context) error {
	key, err := parseKey(context.String(keyFlag.Name))
	if err != nil {
		return err
	}
	return withAccount(&cliContext{context}, func(acc *account) error {
		value, found, err := acc.details.Get(key)
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(context.App.Writer, "%v: not present\n", key)
			return nil
		}
		fmt.Fprintf(context.App.Writer, "%v: %s\n", key, formatValue(value))
		return nil
	})
}
