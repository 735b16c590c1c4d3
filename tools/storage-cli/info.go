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

var infoCommand = cli.Command{
	Action: info,
	Name:   "info",
	Usage:  "prints summary information about the storage of a contract",
	Flags: []cli.Flag{
		&addressFlag,
	},
	ArgsUsage: "<directory>",
}

func info(context *cli.Context) error {
	return withAccount(&cliContext{context}, func(acc *account) error {
		hash, err := acc.details.GetStorageHash()
		if err != nil {
			return err
		}
		values, err := acc.details.GetStorage(nil)
		if err != nil {
			return err
		}
		out := context.App.Writer
		fmt.Fprintf(out, "Contract:      %v\n", acc.details.Address())
		fmt.Fprintf(out, "Storage hash:  %v\n", hash)
		fmt.Fprintf(out, "Present slots: %d\n", len(values))
		fmt.Fprintf(out, "Written keys:  %d\n", acc.details.GetStorageSize())
		fmt.Fprintf(out, "History:\n")
		for i, root := range acc.history {
			fmt.Fprintf(out, "\t%3d: %v\n", i, root)
		}
		return nil
	})
}
