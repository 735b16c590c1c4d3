// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"io"
)

// Flusher is any type that can be flushed.
type Flusher interface {
	Flush() error
}

// FlushAndCloser is a Flusher that also holds resources to be released.
type FlushAndCloser interface {
	Flusher
	io.Closer
}
