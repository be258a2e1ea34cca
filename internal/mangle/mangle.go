// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package mangle turns the netlist's raw, `\`/`$`-prefixed identifiers into
// legal target-language identifiers. The scheme is injective (distinct raw
// names always produce distinct mangled names) and readable: it does not
// need to track a list of reserved words, and a human can usually guess the
// raw name back from the mangled one.
//
// Rules:
//
//  1. Every mangled identifier starts with a two-character tag: public
//     names (raw names starting with `\`) get "p_", internal names (raw
//     names starting with `$`) get "i_".
//  2. A literal underscore in the raw name is doubled ("__").
//  3. Any other non-alphanumeric byte is escaped as its lowercase hex code
//     surrounded by underscores, e.g. `@` becomes "_40_".
package mangle

import (
	"fmt"

	"github.com/gsomlo/yosys/internal/assert"
)

const hexDigits = "0123456789abcdef"

// Name mangles a single raw identifier. It panics if raw is empty or does
// not start with `\` or `$`, since that indicates malformed IR rather than
// a recoverable input error.
func Name(raw string) string {
	assert.That(raw != "", "mangle: empty identifier")
	var out []byte
	switch raw[0] {
	case '\\':
		out = append(out, 'p', '_')
	case '$':
		out = append(out, 'i', '_')
	default:
		assert.Thatf(false, "mangle: identifier %q has no \\ or $ sigil", raw)
	}
	for i := 1; i < len(raw); i++ {
		c := raw[i]
		switch {
		case isAlnum(c):
			out = append(out, c)
		case c == '_':
			out = append(out, '_', '_')
		default:
			out = append(out, '_', hexDigits[(c>>4)&0xf], hexDigits[c&0xf], '_')
		}
	}
	return string(out)
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Module mangles a module name for use as a target-language type name.
func Module(raw string) string { return Name(raw) }

// Memory mangles a memory name for use as a struct-member name.
func Memory(raw string) string { return "memory_" + Name(raw) }

// Cell mangles a cell name for use as a struct-member name.
func Cell(raw string) string { return "cell_" + Name(raw) }

// Wire mangles a wire name for use as a struct-member name.
func Wire(raw string) string { return Name(raw) }

// SigBit mangles a single bit of a wire. For a 1-bit wire this is
// identical to Wire; for a wider wire it disambiguates the bit offset,
// since two different bits of one wire can serve as two unrelated edge
// signals.
func SigBit(raw string, width, offset int) string {
	if width == 1 {
		return Wire(raw)
	}
	return fmt.Sprintf("%s_%d", Wire(raw), offset)
}
