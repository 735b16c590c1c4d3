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
	"io"
	"log"
	"time"
)

// Log is a logger customised for the tool output. It prints the time elapsed
// since its creation in front of every message.
type Log struct {
	start  time.Time
	logger *log.Logger
}

// NewLog creates a new logger writing to the given writer.
func NewLog(out io.Writer) *Log {
	return &Log{start: time.Now(), logger: log.New(out, "", log.LstdFlags)}
}

// Print logs a message that includes the time elapsed since the start of the program.
func (l *Log) Print(msg string) {
	t := uint64(time.Since(l.start).Seconds())
	l.logger.Printf("[t=%4d:%02d] - %s\n", t/60, t%60, msg)
}

// Printf logs a formatted message that includes the time elapsed since the start of the program.
func (l *Log) Printf(format string, v ...any) {
	l.Print(fmt.Sprintf(format, v...))
}

// ProgressLogger reports the progress of a long running task every time a
// configured number of steps has been completed.
type ProgressLogger struct {
	log            *Log
	start          time.Time
	format         string
	window         int
	counter, steps int
}

// NewProgressTracker creates a new ProgressLogger. The format is expected to
// consume the number of completed steps and the current rate in steps/s.
func (l *Log) NewProgressTracker(format string, window int) *ProgressLogger {
	return &ProgressLogger{log: l, start: time.Now(), format: format, window: window}
}

// Step increments the progress counter by the given number of steps.
func (p *ProgressLogger) Step(increment int) {
	p.counter += increment
	p.steps += increment

	if p.steps >= p.window {
		now := time.Now()
		count := p.counter / p.window * p.window
		p.log.Printf(p.format, count, float64(p.steps)/now.Sub(p.start).Seconds())
		p.steps = 0
		p.start = now
	}
}

// GetCounter returns the current value of the progress counter.
func (p *ProgressLogger) GetCounter() int {
	return p.counter
}
