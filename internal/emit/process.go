// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package emit

import (
	"github.com/gsomlo/yosys/internal/assert"
	"github.com/gsomlo/yosys/internal/mangle"
	"github.com/gsomlo/yosys/ir"
)

func (e *Emitter) dumpAssign(a ir.Assign) {
	e.buf.WriteString(e.indent())
	e.dumpSigSpecLHS(a.LHS)
	e.printf(" = ")
	e.dumpSigSpecRHS(a.RHS)
	e.printf(";\n")
}

func (e *Emitter) dumpCaseRule(cr *ir.CaseRule) {
	for _, a := range cr.Actions {
		e.dumpAssign(a)
	}
	for _, sw := range cr.Switches {
		e.dumpSwitchRule(sw)
	}
}

func (e *Emitter) dumpSwitchRule(sw *ir.SwitchRule) {
	e.emitAttrs(sw.Attrs)
	sigTemp := e.temp()
	e.buf.WriteString(e.indent())
	e.printf("const value<%d> &%s = ", sw.Signal.Width(), sigTemp)
	e.dumpSigSpec(sw.Signal, false)
	e.printf(";\n")

	for i, cs := range sw.Cases {
		e.buf.WriteString(e.indent())
		if i > 0 {
			e.printf("} else ")
		}
		if len(cs.Compare) > 0 {
			e.printf("if (")
			for j, cmp := range cs.Compare {
				if j > 0 {
					e.printf(" || ")
				}
				switch {
				case cmp.IsFullyDef():
					e.printf("%s == ", sigTemp)
					e.dumpSigSpec(cmp, false)
				case cmp.IsFullyConst():
					mask, value := maskValue(cmp.AsConst())
					e.printf("and_uu<%d>(%s, ", cmp.Width(), sigTemp)
					e.dumpConstFull(mask)
					e.printf(") == ")
					e.dumpConstFull(value)
				default:
					assert.That(false, "emit: switch compare value has wire chunks")
				}
			}
			e.printf(") ")
		}
		e.printf("{\n")
		e.incIndent()
		e.dumpCaseRule(cs)
		e.decIndent()
	}
	e.line("}")
}

func maskValue(c ir.Const) (mask, value ir.Const) {
	m := make([]ir.Bit, len(c.Bits))
	v := make([]ir.Bit, len(c.Bits))
	for i, b := range c.Bits {
		switch b {
		case ir.S0, ir.S1:
			m[i] = ir.S1
			v[i] = b
		default:
			m[i] = ir.S0
			v[i] = ir.S0
		}
	}
	return ir.Const{Bits: m}, ir.Const{Bits: v}
}

// DumpProcess renders one process's combinational case tree and its
// edge-triggered sync rules. A level-type (ST0/ST1/STa) sync rule is an
// invariant violation and panics.
func (e *Emitter) DumpProcess(p *ir.Process) {
	e.emitAttrs(p.Attrs)
	e.line("// process %s", p.Name)
	e.dumpCaseRule(p.RootCase)

	for _, sync := range p.Syncs {
		bit := sync.Signal.Bit0AsSigBit()
		name := mangle.SigBit(bit.Wire.Name, bit.Wire.Width, bit.Offset)

		var events []string
		switch sync.Type {
		case ir.STp:
			events = []string{"posedge_" + name}
		case ir.STn:
			events = []string{"negedge_" + name}
		case ir.STe:
			events = []string{"posedge_" + name, "negedge_" + name}
		case ir.ST0, ir.ST1, ir.STa:
			// A level-type sync rule reaching this point means proc_dff-style
			// lowering into $adff/$dffsr/$dlatch never ran on this design: by
			// the time a process is emitted, only edge-type sync rules should
			// remain. This is a malformed-input bug, not a case to handle.
			assert.Thatf(false, "emit: process %q has an unlowered level-type (%s) sync rule", p.Name, sync.Type)
			continue
		default:
			assert.Thatf(false, "emit: process %q has an unsupported sync type %s", p.Name, sync.Type)
		}

		e.buf.WriteString(e.indent())
		e.printf("if (")
		for i, ev := range events {
			if i > 0 {
				e.printf(" || ")
			}
			e.printf("%s", ev)
		}
		e.printf(") {\n")
		e.incIndent()
		for _, a := range sync.Actions {
			e.dumpAssign(a)
		}
		e.decIndent()
		e.line("}")
	}
}
