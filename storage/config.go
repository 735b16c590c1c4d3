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

import "github.com/Fantom-foundation/ContractStorage/go/backend/kvstore/xor"

// Config defines the options of a ContractDetails instance. Configurations
// are passed explicitly at construction and copied into every snapshot and
// clone derived from an instance.
type Config struct {
	// A descriptive name for this configuration. It has no effect except for
	// logging and debugging purposes.
	Name string
	// If set, trie nodes are persisted through the account's masking adapter
	// on SyncStorage. If not set, SyncStorage is a no-op and storage content
	// is only retained in memory.
	ExternalStorage bool
	// The namespace mixed into the derivation of the per-account mask of the
	// external storage adapter. Defaults to xor.DetailsStorageNamespace.
	Namespace string
	// Determines the behavior of Clone.
	ClonePolicy ClonePolicy
}

// ClonePolicy selects the semantics of ContractDetails.Clone.
type ClonePolicy byte

const (
	// CloneDeepCopy produces an independent copy of the full account state
	// including its storage.
	CloneDeepCopy ClonePolicy = iota
	// CloneLegacy produces a copy of the address and codes only. The copy
	// has no storage trie and all storage operations on it fail with
	// ErrNoStorageTrie. Only intended for reproducing the behavior of
	// legacy clients.
	CloneLegacy
)

func (p ClonePolicy) String() string {
	switch p {
	case CloneDeepCopy:
		return "DeepCopy"
	case CloneLegacy:
		return "Legacy"
	default:
		return "?"
	}
}

// DefaultConfig keeps storage in memory and clones deeply.
var DefaultConfig = Config{
	Name:        "Default",
	ClonePolicy: CloneDeepCopy,
}

// ExternalConfig persists storage through the masking adapter.
var ExternalConfig = Config{
	Name:            "External",
	ExternalStorage: true,
	ClonePolicy:     CloneDeepCopy,
}

// LegacyConfig reproduces the clone behavior of legacy clients.
var LegacyConfig = Config{
	Name:        "Legacy",
	ClonePolicy: CloneLegacy,
}

var allConfigs = []Config{
	DefaultConfig, ExternalConfig, LegacyConfig,
}

// GetConfigByName attempts to locate a configuration with the given name.
func GetConfigByName(name string) (Config, bool) {
	for _, config := range allConfigs {
		if config.Name == name {
			return config, true
		}
	}
	return Config{}, false
}

func (c *Config) namespace() string {
	if c.Namespace == "" {
		return xor.DetailsStorageNamespace
	}
	return c.Namespace
}
