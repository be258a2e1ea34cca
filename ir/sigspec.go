// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ir

import (
	"strings"

	"github.com/gsomlo/yosys/internal/assert"
)

// Bit is a single 4-state logic value, as found in an RTLIL-style constant.
type Bit byte

const (
	S0 Bit = iota // logic 0
	S1            // logic 1
	Sx            // undefined
	Sz            // high impedance
	Sa            // don't care ("any"), only meaningful in case labels
)

// Const is an ordered bit vector, LSB first (Bits[0] is bit 0).
type Const struct {
	Bits []Bit
}

// ConstFromUint builds a fully-defined Const of the given width.
func ConstFromUint(v uint64, width int) Const {
	bits := make([]Bit, width)
	for i := 0; i < width; i++ {
		if v&(1<<uint(i)) != 0 {
			bits[i] = S1
		} else {
			bits[i] = S0
		}
	}
	return Const{Bits: bits}
}

// Width returns the number of bits in the constant.
func (c Const) Width() int { return len(c.Bits) }

// Bool reports whether the constant is nonzero (any defined 1 bit).
func (c Const) Bool() bool {
	for _, b := range c.Bits {
		if b == S1 {
			return true
		}
	}
	return false
}

// Int interprets the constant as an unsigned integer. Bits beyond 64 are
// ignored; x/z/don't-care bits are treated as zero.
func (c Const) Int() int {
	var v int
	for i, b := range c.Bits {
		if i >= 64 {
			break
		}
		if b == S1 {
			v |= 1 << uint(i)
		}
	}
	return v
}

// IsFullyDef reports whether every bit is S0 or S1.
func (c Const) IsFullyDef() bool {
	for _, b := range c.Bits {
		if b != S0 && b != S1 {
			return false
		}
	}
	return true
}

// Extract returns the sub-constant [offset, offset+width).
func (c Const) Extract(offset, width int) Const {
	if offset < 0 {
		offset = 0
	}
	end := offset + width
	if end > len(c.Bits) {
		end = len(c.Bits)
	}
	out := make([]Bit, width)
	for i := 0; offset+i < end; i++ {
		out[i] = c.Bits[offset+i]
	}
	return Const{Bits: out}
}

// A SigChunk is a contiguous slice of a wire, or a constant of fixed width.
// Exactly one of Wire or Data is meaningful, distinguished by Wire == nil.
type SigChunk struct {
	Wire   *Wire
	Offset int
	Width  int
	Data   Const // meaningful iff Wire == nil
}

// IsConst reports whether the chunk is a constant rather than a wire slice.
func (c SigChunk) IsConst() bool { return c.Wire == nil }

// A SigSpec is an ordered sequence of chunks, LSB first.
type SigSpec struct {
	Chunks []SigChunk
}

// SigFromWire returns the full-width signal for w.
func SigFromWire(w *Wire) SigSpec {
	return SigSpec{Chunks: []SigChunk{{Wire: w, Offset: 0, Width: w.Width}}}
}

// SigFromConst returns a constant signal.
func SigFromConst(c Const) SigSpec {
	return SigSpec{Chunks: []SigChunk{{Data: c, Width: c.Width()}}}
}

// Width returns the total bit width of the signal.
func (s SigSpec) Width() int {
	w := 0
	for _, c := range s.Chunks {
		w += c.Width
	}
	return w
}

// Empty reports whether the signal carries no bits.
func (s SigSpec) Empty() bool { return s.Width() == 0 }

// IsChunk reports whether the signal consists of exactly one chunk.
func (s SigSpec) IsChunk() bool { return len(s.Chunks) == 1 }

// IsWire reports whether the signal is a single chunk covering the entire
// width of a wire, in bit order (i.e. it is, semantically, just that wire).
func (s SigSpec) IsWire() bool {
	if !s.IsChunk() {
		return false
	}
	c := s.Chunks[0]
	return !c.IsConst() && c.Offset == 0 && c.Width == c.Wire.Width
}

// AsWire returns the wire this signal is equivalent to. Panics if !IsWire().
func (s SigSpec) AsWire() *Wire {
	assert.That(s.IsWire(), "ir: SigSpec.AsWire called on a signal that is not a whole wire")
	return s.Chunks[0].Wire
}

// IsBit reports whether the signal is exactly one bit wide.
func (s SigSpec) IsBit() bool { return s.Width() == 1 }

// Bit0 returns the signal's single bit chunk. Panics if the signal is not
// exactly one bit wide.
func (s SigSpec) Bit0() SigChunk {
	assert.That(s.IsBit(), "ir: SigSpec.Bit0 called on a multi-bit signal")
	if len(s.Chunks) == 1 {
		return s.Chunks[0]
	}
	// A single-bit signal built from multiple zero-width-adjacent chunks
	// cannot occur from well-formed IR, but guard anyway.
	for _, c := range s.Chunks {
		if c.Width == 1 {
			return c
		}
	}
	assert.That(false, "ir: malformed 1-bit SigSpec")
	return SigChunk{}
}

// IsFullyConst reports whether every chunk is a constant (no wire chunks).
func (s SigSpec) IsFullyConst() bool {
	for _, c := range s.Chunks {
		if !c.IsConst() {
			return false
		}
	}
	return true
}

// IsFullyDef reports whether the signal is fully constant and every bit is
// S0 or S1 (no x/z/don't-care).
func (s SigSpec) IsFullyDef() bool {
	if !s.IsFullyConst() {
		return false
	}
	for _, c := range s.Chunks {
		if !c.Data.IsFullyDef() {
			return false
		}
	}
	return true
}

// IsFullyOnes reports whether the signal is a fully-defined constant of all
// 1 bits.
func (s SigSpec) IsFullyOnes() bool {
	if !s.IsFullyDef() {
		return false
	}
	for _, c := range s.Chunks {
		for _, b := range c.Data.Bits {
			if b != S1 {
				return false
			}
		}
	}
	return true
}

// AsConst flattens a fully-constant signal into a single Const, LSB first.
// Panics if the signal has any wire chunk.
func (s SigSpec) AsConst() Const {
	assert.That(s.IsFullyConst(), "ir: SigSpec.AsConst called on a signal with wire chunks")
	var bits []Bit
	for _, c := range s.Chunks {
		bits = append(bits, c.Data.Bits...)
	}
	return Const{Bits: bits}
}

// AsInt interprets a fully-constant signal as an unsigned integer.
func (s SigSpec) AsInt() int { return s.AsConst().Int() }

// Extract returns the sub-signal covering [offset, offset+width) bits,
// splitting chunks as necessary.
func (s SigSpec) Extract(offset, width int) SigSpec {
	var out SigSpec
	pos := 0
	for _, c := range s.Chunks {
		cStart, cEnd := pos, pos+c.Width
		pos = cEnd
		lo, hi := max(offset, cStart), min(offset+width, cEnd)
		if lo >= hi {
			continue
		}
		if c.IsConst() {
			out.Chunks = append(out.Chunks, SigChunk{
				Data: c.Data.Extract(lo-cStart, hi-lo), Width: hi - lo,
			})
		} else {
			out.Chunks = append(out.Chunks, SigChunk{
				Wire: c.Wire, Offset: c.Offset + (lo - cStart), Width: hi - lo,
			})
		}
	}
	return out
}

// ExtractBit is shorthand for Extract(offset, 1).
func (s SigSpec) ExtractBit(offset int) SigSpec { return s.Extract(offset, 1) }

// SigBit identifies a single bit of a wire, the granularity at which edge
// sensitivity is actually tracked (two different bits of the same wire can
// serve as two unrelated clocks).
type SigBit struct {
	Wire   *Wire
	Offset int
}

// Bit0AsSigBit returns the (wire, offset) location of a single-bit signal
// that must be a plain wire slice (not a constant). Panics otherwise.
func (s SigSpec) Bit0AsSigBit() SigBit {
	c := s.Bit0()
	assert.That(!c.IsConst(), "ir: SigSpec.Bit0AsSigBit called on a constant bit")
	return SigBit{Wire: c.Wire, Offset: c.Offset}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// String renders a human-readable form, used only in diagnostics — never
// parsed back.
func (s SigSpec) String() string {
	var b strings.Builder
	for i, c := range s.Chunks {
		if i > 0 {
			b.WriteByte(' ')
		}
		if c.IsConst() {
			b.WriteString("<const>")
		} else {
			b.WriteString(c.Wire.Name)
		}
	}
	return b.String()
}
