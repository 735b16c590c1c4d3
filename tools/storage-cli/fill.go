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
	"math/rand"

	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/urfave/cli/v2"
)

var fillCommand = cli.Command{
	Action: addPerformanceDiagnoses(fill),
	Name:   "fill",
	Usage:  "writes random values into the storage of a contract",
	Flags: []cli.Flag{
		&addressFlag,
		&numSlotsFlag,
		&seedFlag,
	},
	ArgsUsage: "<directory>",
}

var (
	numSlotsFlag = cli.IntFlag{
		Name:  "num",
		Usage: "the number of slots to be written",
		Value: 1000,
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "the seed of the random value generator",
		Value: 0,
	}
)

func fill(context *cli.Context) error {
	log := NewLog(context.App.ErrWriter)
	num := context.Int(numSlotsFlag.Name)
	r := rand.New(rand.NewSource(context.Int64(seedFlag.Name)))
	return withAccount(&cliContext{context}, func(acc *account) error {
		log.Printf("Writing %d slots ...", num)
		progress := log.NewProgressTracker("Written %d slots, %.2f slots/s", 10_000)
		for i := 0; i < num; i++ {
			var key common.Key
			var value common.Value
			r.Read(key[:])
			r.Read(value[24:])
			if err := acc.details.Put(key, value); err != nil {
				return err
			}
			progress.Step(1)
		}
		log.Printf("Syncing storage ...")
		if err := acc.commit(); err != nil {
			return err
		}
		hash, err := acc.details.GetStorageHash()
		if err != nil {
			return err
		}
		log.Printf("Done, storage hash: %v", hash)
		return nil
	})
}
