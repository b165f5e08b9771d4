// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"io"
	"time"
)

// UI is where rendered output, warnings and debug traces go.
type UI interface {
	Printf(string, ...interface{})
	Debugf(string, ...interface{})
	Warnf(str string, args ...interface{})
	DebugWriter() io.Writer
}

// Timed reports how long a phase took once the returned func is called.
//
//	defer ui.Timed(tty, "render", file.RelativePath())()
func Timed(ui UI, phase, subject string) func() {
	start := time.Now()
	return func() {
		ui.Debugf("### %s %s (%s)\n", phase, subject, time.Since(start))
	}
}
