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
	"github.com/urfave/cli/v2"
)

var snapshotCommand = cli.Command{
	Action: snapshot,
	Name:   "snapshot",
	Usage:  "prints the storage of a contract at a previous storage root",
	Flags: []cli.Flag{
		&addressFlag,
		&rootFlag,
	},
	ArgsUsage: "<directory>",
}

func snapshot(context *cli.Context) error {
	root, err := parseHash(context.String(rootFlag.Name))
	if err != nil {
		return err
	}
	return withAccount(&cliContext{context}, func(acc *account) error {
		view, err := acc.details.GetSnapshotTo(root)
		if err != nil {
			return err
		}
		return printStorage(context.App.Writer, view)
	})
}
