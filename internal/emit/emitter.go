// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package emit renders an analyzed module as C++ source implementing the
// value<Bits>/wire<Bits>/memory<Bits> two-phase evaluator runtime: an
// eval() method computing next values from current ones, and a commit()
// method that publishes next into curr and reports whether anything
// changed, driving edge detection for the next eval() pass.
package emit

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/gsomlo/yosys/internal/analyze"
	"github.com/gsomlo/yosys/internal/assert"
	"github.com/gsomlo/yosys/internal/flow"
	"github.com/gsomlo/yosys/internal/mangle"
	"github.com/gsomlo/yosys/ir"
)

// Emitter renders a single module's implementation into an internal
// buffer. One Emitter is used per module; Design drives one per module of
// the design and concatenates their output in dependency order.
type Emitter struct {
	design *ir.Design
	result *analyze.Result

	buf    bytes.Buffer
	depth  int
	temps  int
}

// New returns an emitter for res.Module, using the facts already computed
// in res.
func New(design *ir.Design, res *analyze.Result) *Emitter {
	return &Emitter{design: design, result: res}
}

// Bytes returns everything written so far.
func (e *Emitter) Bytes() []byte { return e.buf.Bytes() }

func (e *Emitter) incIndent() { e.depth++ }
func (e *Emitter) decIndent() { e.depth-- }

func (e *Emitter) indent() string {
	return string(bytes.Repeat([]byte("\t"), e.depth))
}

func (e *Emitter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&e.buf, format, args...)
}

func (e *Emitter) line(format string, args ...interface{}) {
	e.buf.WriteString(e.indent())
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// temp returns a fresh, module-unique local variable name.
func (e *Emitter) temp() string {
	t := fmt.Sprintf("tmp_%d", e.temps)
	e.temps++
	return t
}

func (e *Emitter) emitAttrs(attrs map[string]ir.Const) {
	// Attribute comments are emitted unconditionally: they cost nothing and
	// make the generated source traceable back to the netlist.
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		e.line("// %s: %d", k, attrs[k].Int())
	}
}

// constChunks emits a brace-initializer for data, split into fixed-size
// (32-bit) chunks the way value<Bits>'s constructor expects.
func (e *Emitter) constChunks(data ir.Const, width, offset int, fixedWidth bool) {
	const chunkSize = 32
	e.printf("{")
	first := true
	for width > 0 {
		w := width
		if w > chunkSize {
			w = chunkSize
		}
		chunk := data.Extract(offset, w).Int()
		if !first {
			e.printf(",")
		}
		first = false
		if fixedWidth {
			e.printf("0x%08xu", uint32(chunk))
		} else {
			e.printf("%#xu", uint32(chunk))
		}
		offset += chunkSize
		width -= chunkSize
	}
	e.printf("}")
}

func (e *Emitter) dumpConstInit(data ir.Const) {
	e.constChunks(data, data.Width(), 0, false)
}

func (e *Emitter) dumpConst(data ir.Const, width, offset int, fixedWidth bool) {
	e.printf("value<%d>", width)
	e.constChunks(data, width, offset, fixedWidth)
}

func (e *Emitter) dumpConstFull(data ir.Const) {
	e.dumpConst(data, data.Width(), 0, false)
}

// dumpSigChunk renders one chunk of a signal, following elided and
// localized wires to their storage location or expression, and returns
// whether the emitted text needs `.val()` if used where a value<Bits> is
// expected by argument deduction (i.e. it isn't already one).
func (e *Emitter) dumpSigChunk(c ir.SigChunk, isLHS bool) bool {
	if c.IsConst() {
		e.dumpConst(c.Data, c.Width, 0, false)
		return false
	}

	node, elided := e.result.ElidedWires[c.Wire]
	switch {
	case !isLHS && elided:
		switch node.Type {
		case flow.NodeConnect:
			e.dumpSigSpecRHS(node.Connect.RHS)
		case flow.NodeCell:
			if ir.IsElidableCell(node.Cell.Type) {
				e.dumpCellElided(node.Cell)
			} else {
				port := e.result.CellWireDefs[node.Cell][c.Wire]
				e.printf("%s.%s.curr", mangle.Cell(node.Cell.Name), mangle.Wire(port))
			}
		default:
			assert.That(false, "emit: elided wire traces to a process node")
		}
	case e.result.LocalizedWires[c.Wire]:
		e.printf("%s", mangle.Wire(c.Wire.Name))
	case isLHS:
		e.printf("%s.next", mangle.Wire(c.Wire.Name))
	default:
		e.printf("%s.curr", mangle.Wire(c.Wire.Name))
	}

	if c.Width == c.Wire.Width && c.Offset == 0 {
		return false
	}
	if c.Width == 1 {
		e.printf(".slice<%d>()", c.Offset)
	} else {
		e.printf(".slice<%d,%d>()", c.Offset+c.Width-1, c.Offset)
	}
	return true
}

// dumpSigSpec renders sig as a concatenation starting from its most
// significant chunk, matching the original's chunks().rbegin() traversal
// (chunks are stored LSB first, but value<Bits>::concat expects the
// higher-order operand first).
func (e *Emitter) dumpSigSpec(sig ir.SigSpec, isLHS bool) bool {
	if sig.Empty() {
		e.printf("value<0>()")
		return false
	}
	if sig.IsChunk() {
		return e.dumpSigChunk(sig.Chunks[0], isLHS)
	}
	n := len(sig.Chunks)
	e.dumpSigChunk(sig.Chunks[n-1], isLHS)
	for i := n - 2; i >= 0; i-- {
		e.printf(".concat(")
		e.dumpSigChunk(sig.Chunks[i], isLHS)
		e.printf(")")
	}
	return true
}

func (e *Emitter) dumpSigSpecLHS(sig ir.SigSpec) { e.dumpSigSpec(sig, true) }

func (e *Emitter) dumpSigSpecRHS(sig ir.SigSpec) {
	if e.dumpSigSpec(sig, false) {
		e.printf(".val()")
	}
}

func isConnectElided(res *analyze.Result, a ir.Assign) bool {
	if !a.LHS.IsWire() {
		return false
	}
	_, ok := res.ElidedWires[a.LHS.AsWire()]
	return ok
}

func (e *Emitter) dumpConnect(a ir.Assign) {
	if isConnectElided(e.result, a) {
		return
	}
	e.line("// connection")
	e.buf.WriteString(e.indent())
	e.dumpSigSpecLHS(a.LHS)
	e.printf(" = ")
	e.dumpSigSpecRHS(a.RHS)
	e.printf(";\n")
}
