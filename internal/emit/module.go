// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package emit

import (
	"sort"

	"github.com/gsomlo/yosys/internal/flow"
	"github.com/gsomlo/yosys/internal/mangle"
	"github.com/gsomlo/yosys/ir"
)

// dumpWire renders one wire's storage declaration. isLocal selects between
// the eval()-local stack declaration for a localized wire, and the
// struct-member wire<Bits> declaration (plus its edge-flag booleans) for
// everything else.
func (e *Emitter) dumpWire(w *ir.Wire, isLocal bool) {
	if _, ok := e.result.ElidedWires[w]; ok {
		return
	}

	if isLocal {
		if !e.result.LocalizedWires[w] {
			return
		}
		e.emitAttrs(w.Attrs)
		e.line("value<%d> %s;", w.Width, mangle.Wire(w.Name))
		return
	}

	if e.result.LocalizedWires[w] {
		return
	}
	e.emitAttrs(w.Attrs)
	e.buf.WriteString(e.indent())
	e.printf("wire<%d> %s", w.Width, mangle.Wire(w.Name))
	if init, ok := w.Init(); ok {
		e.printf(" ")
		e.dumpConstInit(init)
	}
	e.printf(";\n")

	if e.result.SyncWires[w] {
		for bit, typ := range e.result.SyncTypes {
			if bit.Wire != w {
				continue
			}
			name := mangle.SigBit(w.Name, w.Width, bit.Offset)
			if typ != ir.STn {
				e.line("bool posedge_%s = false;", name)
			}
			if typ != ir.STp {
				e.line("bool negedge_%s = false;", name)
			}
		}
	}
}

func (e *Emitter) dumpMemory(mem *ir.Memory) {
	var initCells []*ir.Cell
	for _, c := range e.result.Module.Cells {
		if c.Type == "$meminit" && c.StrParam("MEMID") == mem.Name {
			initCells = append(initCells, c)
		}
	}
	sort.Slice(initCells, func(i, j int) bool {
		a, b := initCells[i], initCells[j]
		ap, bp := a.ParamInt("PRIORITY"), b.ParamInt("PRIORITY")
		if ap != bp {
			return ap > bp
		}
		return a.Port("ADDR").AsInt() < b.Port("ADDR").AsInt()
	})

	e.emitAttrs(nil)
	kw := "const "
	if e.result.WritableMemories[mem] {
		kw = ""
	}
	e.buf.WriteString(e.indent())
	e.printf("%smemory<%d> %s { %du", kw, mem.Width, mangle.Memory(mem.Name), mem.Size)
	if len(initCells) == 0 {
		e.printf(" };\n")
		return
	}
	e.printf(",\n")
	e.incIndent()
	for _, c := range initCells {
		data := c.Port("DATA").AsConst()
		width := c.ParamInt("WIDTH")
		words := c.ParamInt("WORDS")
		e.buf.WriteString(e.indent())
		e.printf("memory<%d>::init<%d> { %#x, {", mem.Width, words, c.Port("ADDR").AsInt())
		e.incIndent()
		for n := 0; n < words; n++ {
			if n%4 == 0 {
				e.printf("\n%s", e.indent())
			} else {
				e.printf(" ")
			}
			e.dumpConst(data, width, n*width, true)
			e.printf(",")
		}
		e.decIndent()
		e.printf("\n%s}},\n", e.indent())
	}
	e.decIndent()
	e.line("};")
}

// DumpModuleIntf renders the struct declaration for m: its wires, memories,
// user-cell members, and the eval()/commit() method declarations.
func (e *Emitter) DumpModuleIntf() {
	m := e.result.Module
	e.emitAttrs(nil)
	e.printf("struct %s : public module {\n", mangle.Module(m.Name))
	e.incIndent()
	for _, w := range m.Wires {
		e.dumpWire(w, false)
	}
	e.printf("\n")
	for _, mem := range m.Memories {
		e.dumpMemory(mem)
	}
	if len(m.Memories) > 0 {
		e.printf("\n")
	}
	hasCells := false
	for _, c := range m.Cells {
		if ir.IsInternalCell(c.Type) {
			continue
		}
		e.line("%s %s;", mangle.Module(c.Type), mangle.Cell(c.Name))
		hasCells = true
	}
	if hasCells {
		e.printf("\n")
	}
	e.line("void eval() override;")
	e.line("bool commit() override;")
	e.decIndent()
	e.printf("}; // struct %s\n\n", mangle.Module(m.Name))
}

// DumpModuleImpl renders eval() and commit() for m. It returns an error if
// any scheduled cell names an internal cell type this emitter cannot lower.
func (e *Emitter) DumpModuleImpl() error {
	m := e.result.Module
	name := mangle.Module(m.Name)

	e.printf("void %s::eval() {\n", name)
	e.incIndent()
	for _, w := range m.Wires {
		e.dumpWire(w, true)
	}
	for _, n := range e.result.Schedule {
		switch n.Type {
		case flow.NodeConnect:
			e.dumpConnect(n.Connect)
		case flow.NodeCell:
			if err := e.DumpCell(n.Cell); err != nil {
				return err
			}
		case flow.NodeProcess:
			e.DumpProcess(n.Process)
		}
	}
	for bit, typ := range e.result.SyncTypes {
		name := mangle.SigBit(bit.Wire.Name, bit.Wire.Width, bit.Offset)
		if typ != ir.STn {
			e.line("posedge_%s = false;", name)
		}
		if typ != ir.STp {
			e.line("negedge_%s = false;", name)
		}
	}
	e.decIndent()
	e.printf("}\n\n")

	e.printf("bool %s::commit() {\n", name)
	e.incIndent()
	e.line("bool changed = false;")
	for _, w := range m.Wires {
		if _, ok := e.result.ElidedWires[w]; ok {
			continue
		}
		if e.result.LocalizedWires[w] {
			continue
		}
		if e.result.SyncWires[w] {
			prev := mangle.Wire(w.Name) + "_prev"
			curr := mangle.Wire(w.Name) + ".curr"
			edge := mangle.Wire(w.Name) + "_edge"
			e.line("value<%d> %s = %s;", w.Width, prev, curr)
			e.line("if (%s.commit()) {", mangle.Wire(w.Name))
			e.incIndent()
			e.line("value<%d> %s = %s.bit_xor(%s);", w.Width, edge, prev, curr)
			for bit, typ := range e.result.SyncTypes {
				if bit.Wire != w {
					continue
				}
				name := mangle.SigBit(w.Name, w.Width, bit.Offset)
				if typ != ir.STn {
					e.line("if (%s.slice<%d>().val() && %s.slice<%d>().val())", edge, bit.Offset, curr, bit.Offset)
					e.incIndent()
					e.line("posedge_%s = true;", name)
					e.decIndent()
				}
				if typ != ir.STp {
					e.line("if (%s.slice<%d>().val() && !%s.slice<%d>().val())", edge, bit.Offset, curr, bit.Offset)
					e.incIndent()
					e.line("negedge_%s = true;", name)
					e.decIndent()
				}
			}
			e.line("changed = true;")
			e.decIndent()
			e.line("}")
		} else {
			e.line("changed |= %s.commit();", mangle.Wire(w.Name))
		}
	}
	for _, mem := range m.Memories {
		if !e.result.WritableMemories[mem] {
			continue
		}
		e.line("changed |= %s.commit();", mangle.Memory(mem.Name))
	}
	for _, c := range m.Cells {
		if ir.IsInternalCell(c.Type) {
			continue
		}
		e.line("changed |= %s.commit();", mangle.Cell(c.Name))
	}
	e.line("return changed;")
	e.decIndent()
	e.printf("}\n\n")
	return nil
}
