// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package mpt implements an Ethereum compatible Merkle Patricia Trie used to
// authenticate the storage of individual contracts.
//
// Nodes are immutable. Updates create modified copies of the nodes on the path
// from the root to the touched leaf, leaving all other nodes shared. Nodes are
// identified by the Keccak256 hash of their RLP encoding and kept in a
// NodeCache, which may be shared by any number of tries and may optionally be
// backed by a persistent key/value store.
package mpt
