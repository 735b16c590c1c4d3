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
	"sort"
	"strings"

	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore"
	"github.com/Fantom-foundation/ContractStorage/go/backend/kvstore/xor"
	"github.com/Fantom-foundation/ContractStorage/go/common"
	"github.com/Fantom-foundation/ContractStorage/go/common/immutable"
	"github.com/Fantom-foundation/ContractStorage/go/database/mpt"
	"golang.org/x/exp/maps"
)

const (
	// ErrUnsupported is returned by operations not supported by this
	// implementation of contract details.
	ErrUnsupported = common.ConstError("operation not supported")
	// ErrNoStorageTrie is returned by storage operations on an instance
	// without a storage trie, as produced by a legacy clone.
	ErrNoStorageTrie = common.ConstError("contract details have no storage trie")
	// ErrNoDataSource is returned when external storage is needed but no
	// data source has been configured.
	ErrNoDataSource = common.ConstError("no data source configured for external storage")
)

// largeSyncThreshold is the number of nodes a single sync needs to write
// for being logged.
const largeSyncThreshold = 1 << 16

// ContractDetails manages the storage and code of a single contract account.
// Storage slots are kept in a secure Merkle-Patricia trie whose root hash is
// the storage commitment of the account.
//
// Besides the trie, every instance tracks the set of live keys: all keys
// ever written through Put, including keys deleted later on by writing a
// zero value. Keys are never removed from this set, since snapshots of the
// same account may re-converge on states where a deleted key is live again.
// Consequently, GetStorageSize and GetStorageKeys report this historic
// superset, not the number of present entries.
//
// Snapshots derived through GetSnapshotTo share the node cache of their
// source. The set of live keys is an immutable value, so snapshots start with
// the keys of their source but keys added to one instance are not visible in
// any other.
//
// A ContractDetails instance is not safe for concurrent use.
type ContractDetails struct {
	config   Config
	address  common.Address
	trie     *mpt.SecureTrie // nil after a legacy clone
	liveKeys keySet
	codes    map[common.Hash]immutable.Bytes
	dirty    bool
	deleted  bool
	summary  string // cached result of String, reset on every update

	dataSource       kvstore.Store
	externalStorage  kvstore.Store // created lazily, unless injected
	externalInjected bool
}

// NewContractDetails creates details of an empty account with a zero address.
func NewContractDetails(config Config) *ContractDetails {
	return NewContractDetailsFor(config, common.Address{})
}

// NewContractDetailsFor creates details of an empty account with the given
// address.
func NewContractDetailsFor(config Config, address common.Address) *ContractDetails {
	return &ContractDetails{
		config:   config,
		address:  address,
		trie:     mpt.NewSecureTrie(mpt.NewNodeCache()),
		liveKeys: newKeySet(),
		codes:    map[common.Hash]immutable.Bytes{},
	}
}

// Config returns the configuration of this instance.
func (d *ContractDetails) Config() Config {
	return d.config
}

// Put updates the value of the given storage slot. Writing the zero value
// deletes the slot from the trie, but the key remains in the set of live
// keys.
func (d *ContractDetails) Put(key common.Key, value common.Value) error {
	if d.trie == nil {
		return ErrNoStorageTrie
	}
	var err error
	if value.IsZero() {
		err = d.trie.Delete(key[:])
	} else {
		err = d.trie.Put(key[:], EncodeValue(value))
	}
	if err != nil {
		return err
	}
	d.liveKeys = d.liveKeys.Add(key)
	d.touch()
	return nil
}

// Get returns the value of the given storage slot. The boolean result is
// false if the slot is not present, which is distinct from any value since
// zero values are never stored.
func (d *ContractDetails) Get(key common.Key) (common.Value, bool, error) {
	if d.trie == nil {
		return common.Value{}, false, ErrNoStorageTrie
	}
	data, err := d.trie.Get(key[:])
	if err != nil {
		return common.Value{}, false, err
	}
	if data == nil {
		return common.Value{}, false, nil
	}
	value, err := DecodeValue(data)
	if err != nil {
		return common.Value{}, false, err
	}
	return value, true, nil
}

// GetStorageHash returns the root hash of the storage trie, reflecting all
// updates applied so far.
func (d *ContractDetails) GetStorageHash() (common.Hash, error) {
	if d.trie == nil {
		return common.Hash{}, ErrNoStorageTrie
	}
	return d.trie.Hash(), nil
}

// GetStorage fetches the values of the given keys. Keys without a value are
// omitted from the result. If keys is nil, all live keys are fetched.
func (d *ContractDetails) GetStorage(keys []common.Key) (map[common.Key]common.Value, error) {
	if keys == nil {
		keys = sortedKeys(d.liveKeys)
	}
	res := make(map[common.Key]common.Value, len(keys))
	for _, key := range keys {
		value, found, err := d.Get(key)
		if err != nil {
			return nil, err
		}
		// historic keys may not be present anymore
		if found {
			res[key] = value
		}
	}
	return res, nil
}

// GetStorageKeys returns all keys ever written to this account in ascending
// order, including keys currently not present in the storage.
func (d *ContractDetails) GetStorageKeys() []common.Key {
	return sortedKeys(d.liveKeys)
}

// GetStorageSize returns the number of keys ever written to this account.
// This may exceed the number of slots currently present in the storage.
func (d *ContractDetails) GetStorageSize() int {
	return d.liveKeys.Len()
}

// SetStorage puts all given key/value pairs. Updates are applied in order
// and are not rolled back if one of them fails.
func (d *ContractDetails) SetStorage(keys []common.Key, values []common.Value) error {
	if len(keys) != len(values) {
		return fmt.Errorf("number of keys and values differ: %d != %d", len(keys), len(values))
	}
	for i := range keys {
		if err := d.Put(keys[i], values[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetStorageMap puts all key/value pairs of the given map in undefined
// order. Updates are not rolled back if one of them fails.
func (d *ContractDetails) SetStorageMap(storage map[common.Key]common.Value) error {
	for key, value := range storage {
		if err := d.Put(key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetSnapshotTo creates a view on the storage of this account at the given
// storage root. The snapshot shares the node cache and the external storage
// wiring of this instance and starts with the same set of live keys. It is
// not dirty.
func (d *ContractDetails) GetSnapshotTo(root common.Hash) (*ContractDetails, error) {
	if d.trie == nil {
		return nil, ErrNoStorageTrie
	}
	cache := d.trie.Cache()
	var sourceErr error
	if d.config.ExternalStorage && cache.Source() == nil {
		// historic roots may only be available in the external storage
		var store kvstore.Store
		if store, sourceErr = d.GetExternalStorageDataSource(); sourceErr == nil {
			cache.SetSource(store)
		}
	}

	var trie *mpt.SecureTrie
	if root == mpt.EmptyRootHash {
		trie = mpt.NewSecureTrie(cache)
	} else {
		var err error
		trie, err = mpt.OpenSecureTrie(cache, root)
		if err != nil {
			if sourceErr != nil {
				return nil, fmt.Errorf("%w, external storage unavailable: %w", err, sourceErr)
			}
			return nil, err
		}
	}

	res := d.copyWith(trie)
	res.liveKeys = d.liveKeys
	return res, nil
}

// Clone creates a copy of this instance according to the configured clone
// policy. See CloneDeepCopy and CloneLegacy.
func (d *ContractDetails) Clone() *ContractDetails {
	if d.config.ClonePolicy == CloneLegacy {
		if d.trie != nil {
			d.trie.Hash()
		}
		getLogger().Printf("legacy clone of contract %v drops its storage", d.address)
		res := d.copyWith(nil)
		res.liveKeys = newKeySet()
		res.dataSource = nil
		res.externalStorage = nil
		res.externalInjected = false
		return res
	}

	var trie *mpt.SecureTrie
	if d.trie != nil {
		trie = d.trie.Copy()
	}
	res := d.copyWith(trie)
	res.liveKeys = d.liveKeys
	res.dirty = d.dirty
	res.deleted = d.deleted
	return res
}

// copyWith creates a clean copy of this instance using the given trie. The
// set of live keys is left empty.
func (d *ContractDetails) copyWith(trie *mpt.SecureTrie) *ContractDetails {
	return &ContractDetails{
		config:           d.config,
		address:          d.address,
		trie:             trie,
		liveKeys:         newKeySet(),
		codes:            maps.Clone(d.codes),
		dataSource:       d.dataSource,
		externalStorage:  d.externalStorage,
		externalInjected: d.externalInjected,
	}
}

// SetDataSource sets the backend used for external storage. The backend is
// shared with all accounts using it, each of them masking its entries with
// its own mask.
func (d *ContractDetails) SetDataSource(source kvstore.Store) {
	d.dataSource = source
	if !d.externalInjected {
		d.externalStorage = nil
	}
}

// SetExternalStorageDataSource injects the store used for external storage
// instead of the masking adapter derived from the address and data source.
// Injected stores take precedence over derived ones.
func (d *ContractDetails) SetExternalStorageDataSource(source kvstore.Store) {
	d.externalStorage = source
	d.externalInjected = source != nil
}

// GetExternalStorageDataSource returns the store used for external storage.
// Unless injected, the store is created on first use by wrapping the data
// source into a masking adapter derived from the address of this account.
func (d *ContractDetails) GetExternalStorageDataSource() (kvstore.Store, error) {
	if d.externalStorage != nil {
		return d.externalStorage, nil
	}
	if d.dataSource == nil {
		return nil, ErrNoDataSource
	}
	d.externalStorage = xor.New(d.dataSource, xor.MaskFor(d.config.namespace(), d.address))
	return d.externalStorage, nil
}

// SyncStorage writes all nodes of the storage trie not yet present in the
// external storage of this account. Nodes of snapshots sharing the node
// cache are left to those snapshots. It has no effect unless external
// storage is enabled in the configuration.
func (d *ContractDetails) SyncStorage() error {
	if !d.config.ExternalStorage {
		return nil
	}
	if d.trie == nil {
		return ErrNoStorageTrie
	}
	store, err := d.GetExternalStorageDataSource()
	if err != nil {
		return err
	}
	written, err := d.trie.WriteTo(store)
	if written >= largeSyncThreshold {
		getLogger().Printf("synced %d storage nodes of contract %v", written, d.address)
	}
	return err
}

// LoadStorage replaces the storage of this account by the content committed
// to by the given root in the external storage. The given keys become the
// set of live keys. This also restores the storage of instances produced by
// a legacy clone.
func (d *ContractDetails) LoadStorage(root common.Hash, keys []common.Key) error {
	store, err := d.GetExternalStorageDataSource()
	if err != nil {
		return err
	}
	var cache *mpt.NodeCache
	if d.trie != nil {
		cache = d.trie.Cache()
	}
	// a cache backed by another store belongs to a different account
	if cache == nil || (cache.Source() != nil && cache.Source() != store) {
		cache = mpt.NewNodeCache()
	}
	cache.SetSource(store)
	trie, err := mpt.OpenSecureTrie(cache, root)
	if err != nil {
		return err
	}
	d.trie = trie
	d.liveKeys = newKeySet(keys...)
	d.summary = ""
	return nil
}

// Encode is not supported. Contract details are persisted through their
// storage trie and the external storage instead.
func (d *ContractDetails) Encode() ([]byte, error) {
	return nil, ErrUnsupported
}

// Decode is not supported, see Encode.
func (d *ContractDetails) Decode([]byte) error {
	return ErrUnsupported
}

func (d *ContractDetails) Address() common.Address {
	return d.address
}

// SetAddress updates the address of this account. A lazily created external
// storage adapter is dropped, such that it is derived from the new address
// on its next use.
func (d *ContractDetails) SetAddress(address common.Address) {
	d.address = address
	d.summary = ""
	if !d.externalInjected {
		d.externalStorage = nil
	}
}

func (d *ContractDetails) IsDirty() bool {
	return d.dirty
}

func (d *ContractDetails) SetDirty(dirty bool) {
	d.dirty = dirty
}

func (d *ContractDetails) IsDeleted() bool {
	return d.deleted
}

func (d *ContractDetails) SetDeleted(deleted bool) {
	d.deleted = deleted
	d.summary = ""
}

// touch marks this instance as modified.
func (d *ContractDetails) touch() {
	d.dirty = true
	d.summary = ""
}

func (d *ContractDetails) String() string {
	if d.summary != "" {
		return d.summary
	}
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("ContractDetails %v {\n", d.address))
	if d.deleted {
		builder.WriteString("\tDeleted: true\n")
	}
	if d.trie == nil {
		builder.WriteString("\tStorage: none\n")
	} else {
		builder.WriteString(fmt.Sprintf("\tStorage: %v\n", d.trie.Hash()))
		storage, err := d.GetStorage(nil)
		if err != nil {
			builder.WriteString(fmt.Sprintf("\t\t<%v>\n", err))
		}
		keys := maps.Keys(storage)
		sort.Slice(keys, func(i, j int) bool {
			return common.CompareKeys(keys[i], keys[j]) < 0
		})
		for _, key := range keys {
			value := storage[key]
			builder.WriteString(fmt.Sprintf("\t\t%x: %x\n", key[:], value[:]))
		}
	}
	hashes := maps.Keys(d.codes)
	sort.Slice(hashes, func(i, j int) bool {
		return string(hashes[i][:]) < string(hashes[j][:])
	})
	for _, hash := range hashes {
		builder.WriteString(fmt.Sprintf("\tCode %x: %d bytes\n", hash[:], d.codes[hash].Len()))
	}
	builder.WriteString("}")
	d.summary = builder.String()
	return d.summary
}
