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
	"log"
	"sync/atomic"
)

var logger atomic.Pointer[log.Logger]

// SetLogger replaces the logger used by this package. A nil logger restores
// the standard logger.
func SetLogger(l *log.Logger) {
	logger.Store(l)
}

func getLogger() *log.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return log.Default()
}
