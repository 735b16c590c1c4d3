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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore/ldb"
	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/Fantom-foundation/ContractStorage/go/storage"
)

// account is the storage of a single contract maintained in a database
// directory. Trie nodes of all accounts are kept in a shared table, masked by
// each account's external storage adapter. In addition, a head record per
// account tracks the current storage root, the live keys, and all roots the
// account had after previous updates.
type account struct {
	store   *ldb.Store
	meta    *ldb.Store
	details *storage.ContractDetails
	history []common.Hash
}

type accountHead struct {
	Root    string   `json:"root"`
	Keys    []string `json:"keys"`
	History []string `json:"history,omitempty"`
}

// openAccount opens the storage of the given account in the given directory.
// Accounts without a head record start empty.
func openAccount(dir string, address common.Address) (*account, error) {
	store, err := ldb.Open(dir, ldb.TrieNodeKey)
	if err != nil {
		return nil, err
	}
	details := storage.NewContractDetailsFor(storage.ExternalConfig, address)
	details.SetDataSource(store)
	res := &account{
		store:   store,
		meta:    ldb.New(store.DB(), ldb.MetadataKey),
		details: details,
	}
	if err := res.load(); err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return res, nil
}

func (a *account) load() error {
	address := a.details.Address()
	data, err := a.meta.Get(address[:])
	if err != nil || data == nil {
		return err
	}
	var head accountHead
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("invalid head record of account %v: %w", address, err)
	}
	root, err := parseHash(head.Root)
	if err != nil {
		return err
	}
	keys := make([]common.Key, 0, len(head.Keys))
	for _, cur := range head.Keys {
		key, err := parseHash(cur)
		if err != nil {
			return err
		}
		keys = append(keys, common.Key(key))
	}
	for _, cur := range head.History {
		hash, err := parseHash(cur)
		if err != nil {
			return err
		}
		a.history = append(a.history, hash)
	}
	return a.details.LoadStorage(root, keys)
}

// commit persists all modifications of the account storage.
func (a *account) commit() error {
	if !a.details.IsDirty() {
		return nil
	}
	if err := a.details.SyncStorage(); err != nil {
		return err
	}
	root, err := a.details.GetStorageHash()
	if err != nil {
		return err
	}
	if len(a.history) == 0 || a.history[len(a.history)-1] != root {
		a.history = append(a.history, root)
	}

	head := accountHead{Root: formatHash(root)}
	for _, key := range a.details.GetStorageKeys() {
		head.Keys = append(head.Keys, formatHash(common.Hash(key)))
	}
	for _, hash := range a.history {
		head.History = append(head.History, formatHash(hash))
	}
	data, err := json.Marshal(head)
	if err != nil {
		return err
	}
	address := a.details.Address()
	if err := a.meta.Put(address[:], data); err != nil {
		return err
	}
	a.details.SetDirty(false)
	return nil
}

// close commits pending modifications and releases the database.
func (a *account) close() error {
	return errors.Join(a.commit(), flushAndClose(a.store))
}

func flushAndClose(res common.FlushAndCloser) error {
	return errors.Join(res.Flush(), res.Close())
}

// withAccount runs the given operation on the account selected by the
// command line of the given context and closes it afterwards.
func withAccount(context *cliContext, op func(*account) error) (err error) {
	dir, address, err := context.getAccountLocation()
	if err != nil {
		return err
	}
	acc, err := openAccount(dir, address)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, acc.close())
	}()
	return op(acc)
}
