// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package assert checks structural invariants this module relies on but
// cannot recover from once broken — a caller-provided ir.Design that
// violates its own IR contract, or a scheduler bug. These are bugs, not
// user errors, so they panic instead of returning error.
package assert

import "fmt"

// That panics with msg if cond is false.
func That(cond bool, msg string) {
	if !cond {
		panic("assert: " + msg)
	}
}

// Thatf is That with a formatted message.
func Thatf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic("assert: " + fmt.Sprintf(format, args...))
	}
}
