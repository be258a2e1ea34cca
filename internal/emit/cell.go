// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package emit

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/gsomlo/yosys/internal/assert"
	"github.com/gsomlo/yosys/internal/mangle"
	"github.com/gsomlo/yosys/ir"
)

func signChar(signed bool) byte {
	if signed {
		return 's'
	}
	return 'u'
}

// dumpCellElided renders an elidable cell's output as a single inline
// expression, used both for wires elided into their use site and for the
// right-hand side of an unelided assignment driven by such a cell.
func (e *Emitter) dumpCellElided(c *ir.Cell) {
	switch {
	case ir.IsUnaryCell(c.Type):
		e.printf("%s_%c<%d>(", c.Type[1:], signChar(c.ParamBool("A_SIGNED")), c.ParamInt("Y_WIDTH"))
		e.dumpSigSpecRHS(c.Port("A"))
		e.printf(")")
	case ir.IsBinaryCell(c.Type):
		e.printf("%s_%c%c<%d>(", c.Type[1:], signChar(c.ParamBool("A_SIGNED")), signChar(c.ParamBool("B_SIGNED")), c.ParamInt("Y_WIDTH"))
		e.dumpSigSpecRHS(c.Port("A"))
		e.printf(", ")
		e.dumpSigSpecRHS(c.Port("B"))
		e.printf(")")
	case c.Type == "$mux":
		e.printf("(")
		e.dumpSigSpecRHS(c.Port("S"))
		e.printf(" ? ")
		e.dumpSigSpecRHS(c.Port("B"))
		e.printf(" : ")
		e.dumpSigSpecRHS(c.Port("A"))
		e.printf(")")
	case c.Type == "$concat":
		e.dumpSigSpecRHS(c.Port("B"))
		e.printf(".concat(")
		e.dumpSigSpecRHS(c.Port("A"))
		e.printf(").val()")
	case c.Type == "$slice":
		e.dumpSigSpecRHS(c.Port("A"))
		off := c.ParamInt("OFFSET")
		yw := c.ParamInt("Y_WIDTH")
		e.printf(".slice<%d,%d>().val()", off+yw-1, off)
	default:
		assert.That(false, "emit: "+c.Type+" is not an elidable cell")
	}
}

// isCellElided reports whether c's Y output feeds a wire that was itself
// elided away, meaning the cell needs no statement of its own.
func (e *Emitter) isCellElided(c *ir.Cell) bool {
	if !ir.IsElidableCell(c.Type) || !c.HasPort("Y") {
		return false
	}
	y := c.Port("Y")
	if !y.IsWire() {
		return false
	}
	_, ok := e.result.ElidedWires[y.AsWire()]
	return ok
}

// DumpCell renders one non-elided cell's contribution to eval(). It returns
// an error, rather than panicking, when c names an internal cell type this
// emitter does not know how to lower — that is a diagnosable, malformed-input
// condition, not a violated invariant of already-accepted IR.
func (e *Emitter) DumpCell(c *ir.Cell) error {
	if e.isCellElided(c) {
		return nil
	}
	if c.Type == "$meminit" {
		return nil // handled by dumpMemory
	}

	e.line("// cell %s", c.Name)

	switch {
	case ir.IsElidableCell(c.Type):
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Y"))
		e.printf(" = ")
		e.dumpCellElided(c)
		e.printf(";\n")

	case c.Type == "$pmux":
		e.dumpPmux(c)

	case ir.IsFFCell(c.Type):
		e.dumpFlipFlop(c)

	case c.Type == "$memrd" || c.Type == "$memwr":
		e.dumpMemPort(c)

	case ir.IsInternalCell(c.Type):
		return errors.Errorf("emit: unsupported internal cell %q (cell %q)", c.Type, c.Name)

	default:
		e.dumpUserCell(c)
	}
	return nil
}

func (e *Emitter) dumpPmux(c *ir.Cell) {
	width := c.ParamInt("WIDTH")
	sWidth := c.ParamInt("S_WIDTH")
	for part := 0; part < sWidth; part++ {
		if part == 0 {
			e.buf.WriteString(e.indent())
		} else {
			e.printf(" else ")
		}
		e.printf("if (")
		e.dumpSigSpecRHS(c.Port("S").ExtractBit(part))
		e.printf(") {\n")
		e.incIndent()
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Y"))
		e.printf(" = ")
		e.dumpSigSpecRHS(c.Port("B").Extract(part*width, width))
		e.printf(";\n")
		e.decIndent()
		e.buf.WriteString(e.indent())
		e.printf("}")
	}
	e.printf(" else {\n")
	e.incIndent()
	e.buf.WriteString(e.indent())
	e.dumpSigSpecLHS(c.Port("Y"))
	e.printf(" = ")
	e.dumpSigSpecRHS(c.Port("A"))
	e.printf(";\n")
	e.decIndent()
	e.line("}")
}

func (e *Emitter) dumpFlipFlop(c *ir.Cell) {
	if c.HasPort("CLK") && c.Port("CLK").IsWire() {
		bit := c.Port("CLK").Bit0()
		name := mangle.SigBit(bit.Wire.Name, bit.Wire.Width, bit.Offset)
		edge := "negedge_"
		if c.ParamBool("CLK_POLARITY") {
			edge = "posedge_"
		}
		e.line("if (%s%s) {", edge, name)
		e.incIndent()
		if c.Type == "$dffe" {
			e.buf.WriteString(e.indent())
			e.printf("if (")
			e.dumpSigSpecRHS(c.Port("EN"))
			e.printf(" == value<1> {%du}) {\n", boolToInt(c.ParamBool("EN_POLARITY")))
			e.incIndent()
		}
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(" = ")
		e.dumpSigSpecRHS(c.Port("D"))
		e.printf(";\n")
		if c.Type == "$dffe" {
			e.decIndent()
			e.line("}")
		}
		e.decIndent()
		e.line("}")
	} else if c.HasPort("EN") {
		e.buf.WriteString(e.indent())
		e.printf("if (")
		e.dumpSigSpecRHS(c.Port("EN"))
		e.printf(" == value<1> {%du}) {\n", boolToInt(c.ParamBool("EN_POLARITY")))
		e.incIndent()
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(" = ")
		e.dumpSigSpecRHS(c.Port("D"))
		e.printf(";\n")
		e.decIndent()
		e.line("}")
	}
	if c.HasPort("ARST") {
		e.buf.WriteString(e.indent())
		e.printf("if (")
		e.dumpSigSpecRHS(c.Port("ARST"))
		e.printf(" == value<1> {%du}) {\n", boolToInt(c.ParamBool("ARST_POLARITY")))
		e.incIndent()
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(" = ")
		e.dumpConstFull(c.Param("ARST_VALUE"))
		e.printf(";\n")
		e.decIndent()
		e.line("}")
	}
	if c.HasPort("SET") {
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(" = ")
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(".update(")
		e.dumpConstFull(ir.ConstFromUint(^uint64(0), c.ParamInt("WIDTH")))
		e.printf(", ")
		e.dumpSigSpecRHS(c.Port("SET"))
		if !c.ParamBool("SET_POLARITY") {
			e.printf(".bit_not()")
		}
		e.printf(");\n")
	}
	if c.HasPort("CLR") {
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(" = ")
		e.dumpSigSpecLHS(c.Port("Q"))
		e.printf(".update(")
		e.dumpConstFull(ir.ConstFromUint(0, c.ParamInt("WIDTH")))
		e.printf(", ")
		e.dumpSigSpecRHS(c.Port("CLR"))
		if !c.ParamBool("CLR_POLARITY") {
			e.printf(".bit_not()")
		}
		e.printf(");\n")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (e *Emitter) dumpMemPort(c *ir.Cell) {
	clocked := c.ParamBool("CLK_ENABLE")
	if clocked {
		bit := c.Port("CLK").Bit0()
		name := mangle.SigBit(bit.Wire.Name, bit.Wire.Width, bit.Offset)
		edge := "negedge_"
		if c.ParamBool("CLK_POLARITY") {
			edge = "posedge_"
		}
		e.line("if (%s%s) {", edge, name)
		e.incIndent()
	}

	mem := e.result.Module.Memory(c.StrParam("MEMID"))
	idx := e.temp()
	e.buf.WriteString(e.indent())
	e.printf("auto %s = memory_index(", idx)
	e.dumpSigSpecRHS(c.Port("ADDR"))
	e.printf(", %d, %d);\n", mem.StartOffset, mem.Size)

	if c.Type == "$memrd" {
		guarded := !c.Port("EN").IsFullyOnes()
		if guarded {
			e.buf.WriteString(e.indent())
			e.printf("if (")
			e.dumpSigSpecRHS(c.Port("EN"))
			e.printf(") {\n")
			e.incIndent()
		}
		e.line("assert(%s.valid && \"out of bounds read\");", idx)
		e.line("if (%s.valid) {", idx)
		e.incIndent()
		if e.result.WritableMemories[mem] {
			addrTemp := e.temp()
			e.buf.WriteString(e.indent())
			e.printf("const value<%d> &%s = ", c.Port("ADDR").Width(), addrTemp)
			e.dumpSigSpecRHS(c.Port("ADDR"))
			e.printf(";\n")
			lhsTemp := e.temp()
			e.line("value<%d> %s = %s[%s.index];", mem.Width, lhsTemp, mangle.Memory(mem.Name), idx)

			writers := append([]*ir.Cell(nil), e.result.TransparentFor[c]...)
			sort.Slice(writers, func(i, j int) bool {
				return writers[i].ParamInt("PRIORITY") < writers[j].ParamInt("PRIORITY")
			})
			for _, wr := range writers {
				e.buf.WriteString(e.indent())
				e.printf("if (%s == ", addrTemp)
				e.dumpSigSpecRHS(wr.Port("ADDR"))
				e.printf(") {\n")
				e.incIndent()
				e.buf.WriteString(e.indent())
				e.printf("%s = %s.update(", lhsTemp, lhsTemp)
				e.dumpSigSpecRHS(wr.Port("DATA"))
				e.printf(", ")
				e.dumpSigSpecRHS(wr.Port("EN"))
				e.printf(");\n")
				e.decIndent()
				e.line("}")
			}
			e.buf.WriteString(e.indent())
			e.dumpSigSpecLHS(c.Port("DATA"))
			e.printf(" = %s;\n", lhsTemp)
		} else {
			e.buf.WriteString(e.indent())
			e.dumpSigSpecLHS(c.Port("DATA"))
			e.printf(" = %s[%s.index];\n", mangle.Memory(mem.Name), idx)
		}
		e.decIndent()
		e.line("} else {")
		e.incIndent()
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(c.Port("DATA"))
		e.printf(" = value<%d> {};\n", mem.Width)
		e.decIndent()
		e.line("}")
		if guarded {
			e.decIndent()
			e.line("}")
		}
	} else {
		e.line("assert(%s.valid && \"out of bounds write\");", idx)
		e.line("if (%s.valid) {", idx)
		e.incIndent()
		e.buf.WriteString(e.indent())
		e.printf("%s.update(%s.index, ", mangle.Memory(mem.Name), idx)
		e.dumpSigSpecRHS(c.Port("DATA"))
		e.printf(", ")
		e.dumpSigSpecRHS(c.Port("EN"))
		e.printf(", %d);\n", c.ParamInt("PRIORITY"))
		e.decIndent()
		e.line("}")
	}

	if clocked {
		e.decIndent()
		e.line("}")
	}
}

func (e *Emitter) dumpUserCell(c *ir.Cell) {
	names := make([]string, 0, len(c.Ports))
	for name := range c.Ports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dir, known := e.design.CellPortDirection(c, name)
		if !known || dir == ir.Output {
			continue
		}
		e.buf.WriteString(e.indent())
		e.printf("%s.%s.next = ", mangle.Cell(c.Name), mangle.Wire(name))
		e.dumpSigSpecRHS(c.Ports[name])
		e.printf(";\n")
	}
	e.line("%s.eval();", mangle.Cell(c.Name))
	for _, name := range names {
		dir, known := e.design.CellPortDirection(c, name)
		if !known || dir != ir.Output {
			continue
		}
		sig := c.Ports[name]
		if sig.IsWire() {
			if _, ok := e.result.ElidedWires[sig.AsWire()]; ok {
				if _, ok2 := e.result.CellWireDefs[c][sig.AsWire()]; ok2 {
					continue
				}
			}
		}
		e.buf.WriteString(e.indent())
		e.dumpSigSpecLHS(sig)
		e.printf(" = %s.%s.curr;\n", mangle.Cell(c.Name), mangle.Wire(name))
	}
}
