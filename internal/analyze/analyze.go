// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package analyze computes, per module, everything the emitter needs but
// the raw IR does not directly carry: which wires are edge-sensitive and
// under which polarity, which memories are ever written, which
// transparent read ports must observe which write ports, which wires can
// be elided or localized, and the feedback-minimized evaluation order.
package analyze

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/gsomlo/yosys/internal/flow"
	"github.com/gsomlo/yosys/internal/rtllog"
	"github.com/gsomlo/yosys/ir"
)

// Options controls how aggressively analysis simplifies a module. It
// mirrors the optimization levels a caller selects via -O.
type Options struct {
	ElideInternal    bool
	ElidePublic      bool
	LocalizeInternal bool
	LocalizePublic   bool

	// Logger, if set, receives the feedback-arc diagnostic that
	// analyze_design logs while scheduling: which wires close a
	// combinational cycle in a module, and hence can never be elided or
	// localized. A nil Logger disables the diagnostic, not the analysis.
	Logger *rtllog.Logger
}

// domainKey groups memory write ports sharing a clock and a memory.
type domainKey struct {
	clockWire *ir.Wire
	memory    *ir.Memory
}

// Result holds every derived fact about one module.
type Result struct {
	Module *ir.Module

	// SyncTypes maps an edge-sensitive signal bit to the edge type observed
	// on it; if both polarities are seen, it is promoted to ir.STe.
	SyncTypes map[ir.SigBit]ir.SyncType
	SyncWires map[*ir.Wire]bool

	WritableMemories map[*ir.Memory]bool
	TransparentFor   map[*ir.Cell][]*ir.Cell // $memrd cell -> $memwr cells it must observe

	CellWireDefs map[*ir.Cell]map[*ir.Wire]string // elided wire -> defining port name, per cell

	ElidedWires    map[*ir.Wire]*flow.Node
	LocalizedWires map[*ir.Wire]bool
	FeedbackWires  map[*ir.Wire]bool

	Schedule []*flow.Node

	Graph *flow.Graph
}

// canonWire follows direct whole-wire-to-whole-wire continuous
// assignments to their ultimate driver. This stands in for a full signal
// map (RTLIL's SigMap), narrowed to the only aliasing pattern a flattened
// netlist's clock and sync signals actually need resolved through.
func (r *Result) canonWire(w *ir.Wire) *ir.Wire {
	seen := map[*ir.Wire]bool{}
	for {
		if seen[w] {
			return w
		}
		seen[w] = true
		found := false
		for _, a := range r.Module.Connections {
			if a.LHS.IsWire() && a.LHS.AsWire() == w && a.RHS.IsWire() {
				w = a.RHS.AsWire()
				found = true
				break
			}
		}
		if !found {
			return w
		}
	}
}

// canonBit resolves sig, which must denote a single wire bit, to its
// canonical (wire, offset) location.
func (r *Result) canonBit(sig ir.SigSpec) (ir.SigBit, error) {
	if !sig.IsBit() {
		return ir.SigBit{}, errors.New("analyze: signal is not a single bit")
	}
	c := sig.Bit0()
	if c.IsConst() {
		return ir.SigBit{}, errors.New("analyze: signal bit is a constant, not a wire")
	}
	if c.Width == c.Wire.Width && c.Offset == 0 {
		// Whole 1-bit wire: canonicalize through connects like any other.
		return ir.SigBit{Wire: r.canonWire(c.Wire), Offset: 0}, nil
	}
	return ir.SigBit{Wire: c.Wire, Offset: c.Offset}, nil
}

func (r *Result) registerEdgeSignal(sig ir.SigSpec, typ ir.SyncType) error {
	if !typ.IsEdge() {
		return errors.Errorf("analyze: %s is not an edge sync type", typ)
	}
	bit, err := r.canonBit(sig)
	if err != nil {
		return errors.Wrap(err, "analyze: edge sync signal")
	}
	if prev, ok := r.SyncTypes[bit]; ok && prev != typ {
		r.SyncTypes[bit] = ir.STe
	} else if !ok {
		r.SyncTypes[bit] = typ
	}
	r.SyncWires[bit.Wire] = true
	return nil
}

// Module runs the full eight-step analysis pipeline over one module of
// design and returns its Result.
func Module(design *ir.Design, m *ir.Module, opt Options) (*Result, error) {
	r := &Result{
		Module:           m,
		SyncTypes:        make(map[ir.SigBit]ir.SyncType),
		SyncWires:        make(map[*ir.Wire]bool),
		WritableMemories: make(map[*ir.Memory]bool),
		TransparentFor:   make(map[*ir.Cell][]*ir.Cell),
		CellWireDefs:     make(map[*ir.Cell]map[*ir.Wire]string),
		ElidedWires:      make(map[*ir.Wire]*flow.Node),
		LocalizedWires:   make(map[*ir.Wire]bool),
		FeedbackWires:    make(map[*ir.Wire]bool),
	}

	g := flow.New(design, m)
	r.Graph = g

	// Step 1: connections.
	for _, a := range m.Connections {
		g.AddConnect(a)
	}

	// Step 2: cells — build nodes, register edge signals for DFF families
	// and clocked memory ports, track writable memories and write-port
	// domains for later transparency grouping.
	memwrPerDomain := make(map[domainKey][]*ir.Cell)
	for _, c := range m.Cells {
		g.AddCell(c)

		switch c.Type {
		case "$dff", "$dffe", "$adff", "$dffsr":
			// $adff and $dffsr are level-sensitive on their reset/set
			// inputs, not on CLK: the clock itself is still edge sensitive.
			if clk := c.Port("CLK"); clk.IsWire() {
				typ := ir.STn
				if c.ParamBool("CLK_POLARITY") {
					typ = ir.STp
				}
				if err := r.registerEdgeSignal(clk, typ); err != nil {
					return nil, errors.Wrapf(err, "module %q cell %q", m.Name, c.Name)
				}
			}
		case "$memrd", "$memwr":
			if c.ParamBool("CLK_ENABLE") {
				if clk := c.Port("CLK"); clk.IsWire() {
					typ := ir.STn
					if c.ParamBool("CLK_POLARITY") {
						typ = ir.STp
					}
					if err := r.registerEdgeSignal(clk, typ); err != nil {
						return nil, errors.Wrapf(err, "module %q cell %q", m.Name, c.Name)
					}
				}
			}
		case "$meminit":
			// no clock, nothing to register
		}

		if c.Type == "$memwr" {
			if mem := m.Memory(memIDOf(c)); mem != nil {
				r.WritableMemories[mem] = true
			}
		}
		if c.Type == "$memwr" && c.ParamBool("CLK_ENABLE") {
			if clk := c.Port("CLK"); clk.IsWire() {
				clkWire := r.canonWire(clk.AsWire())
				if mem := m.Memory(memIDOf(c)); mem != nil {
					key := domainKey{clockWire: clkWire, memory: mem}
					memwrPerDomain[key] = append(memwrPerDomain[key], c)
				}
			}
		}
	}

	// Step 3: transparent read ports observe every write port in their
	// clock/memory domain, and gain synthetic uses of EN/ADDR/DATA on each.
	for _, c := range m.Cells {
		if c.Type != "$memrd" || !c.ParamBool("CLK_ENABLE") || !c.ParamBool("TRANSPARENT") {
			continue
		}
		clk := c.Port("CLK")
		if !clk.IsWire() {
			continue
		}
		clkWire := r.canonWire(clk.AsWire())
		mem := m.Memory(memIDOf(c))
		if mem == nil {
			continue
		}
		writers := memwrPerDomain[domainKey{clockWire: clkWire, memory: mem}]
		if len(writers) == 0 {
			continue
		}
		var node *flow.Node
		for _, n := range g.Nodes {
			if n.Type == flow.NodeCell && n.Cell == c {
				node = n
				break
			}
		}
		r.TransparentFor[c] = append(r.TransparentFor[c], writers...)
		if node != nil {
			for _, wr := range writers {
				g.AddUses(node, wr.Port("EN"))
				g.AddUses(node, wr.Port("ADDR"))
				g.AddUses(node, wr.Port("DATA"))
			}
		}
	}

	// Step 4: processes — build nodes and register edge signals for
	// edge-type sync rules.
	for _, p := range m.Processes {
		g.AddProcess(p)
		for _, sync := range p.Syncs {
			switch sync.Type {
			case ir.STp, ir.STn, ir.STe:
				if err := r.registerEdgeSignal(sync.Signal, sync.Type); err != nil {
					return nil, errors.Wrapf(err, "module %q process %q", m.Name, p.Name)
				}
			case ir.ST0, ir.ST1, ir.STa:
				// level-type: no special handling
			case ir.STi:
				return nil, errors.Errorf("module %q process %q: unlowered init sync rule", m.Name, p.Name)
			case ir.STg:
				return nil, errors.Errorf("module %q process %q: global clock is not supported", m.Name, p.Name)
			}
		}
	}

	// Step 5: elision candidates — every wire with a unique elidable def
	// and a unique elidable use, not a port, not (*keep*), and allowed by
	// the internal/public elision options.
	for _, w := range m.Wires {
		if !g.IsElidable(w) {
			continue
		}
		if w.PortID != 0 || w.Keep() {
			continue
		}
		if w.Internal() && !opt.ElideInternal {
			continue
		}
		if w.Public() && !opt.ElidePublic {
			continue
		}
		if r.SyncWires[w] {
			continue
		}
		defs := g.WireDefs(w)
		if len(defs) != 1 {
			continue
		}
		r.ElidedWires[w] = defs[0]
	}

	// Step 6: record which port on which cell defines each elided wire, so
	// the emitter can look up the source expression by port name.
	for _, c := range m.Cells {
		for name, sig := range c.Ports {
			if !sig.IsWire() {
				continue
			}
			w := sig.AsWire()
			if _, ok := r.ElidedWires[w]; !ok {
				continue
			}
			if dir, known := design.CellPortDirection(c, name); !known || dir == ir.Input {
				continue
			}
			if r.CellWireDefs[c] == nil {
				r.CellWireDefs[c] = make(map[*ir.Wire]string)
			}
			r.CellWireDefs[c][w] = name
		}
	}

	// Step 7: schedule nodes to minimize feedback, then walk the schedule
	// left to right marking any wire whose use precedes its own scheduled
	// def as a feedback wire — such wires can never be elided or localized.
	nodeDefs := make(map[*flow.Node][]*ir.Wire)
	for _, w := range m.Wires {
		for _, n := range g.WireDefs(w) {
			nodeDefs[n] = append(nodeDefs[n], w)
		}
	}

	sched := flow.NewScheduler[*flow.Node]()
	refs := make(map[*flow.Node]flow.Ref[*flow.Node], len(g.Nodes))
	for _, n := range g.Nodes {
		refs[n] = sched.Add(n)
	}
	added := make(map[[2]*flow.Node]bool)
	for n, defs := range nodeDefs {
		for _, w := range defs {
			for _, succ := range g.WireUses(w) {
				key := [2]*flow.Node{n, succ}
				if added[key] {
					continue
				}
				added[key] = true
				sched.AddEdge(refs[n], refs[succ])
			}
		}
	}
	order := sched.Schedule()
	r.Schedule = order

	evaluated := make(map[*flow.Node]bool, len(order))
	for _, n := range order {
		evaluated[n] = true
		for _, w := range nodeDefs[n] {
			for _, succ := range g.WireUses(w) {
				if evaluated[succ] {
					r.FeedbackWires[w] = true
					delete(r.ElidedWires, w)
				}
			}
		}
	}

	if opt.Logger != nil && len(r.FeedbackWires) > 0 {
		names := make([]string, 0, len(r.FeedbackWires))
		for w := range r.FeedbackWires {
			names = append(names, w.Name)
		}
		sort.Strings(names)
		opt.Logger.Progress("module %q contains feedback arcs through wires:", m.Name)
		for _, name := range names {
			opt.Logger.Progress("  %s", name)
		}
	}

	// Step 8: localization candidates — wires that were not elided, with
	// exactly one def (not necessarily elidable), no feedback, not a port,
	// not (*keep*), not a sync wire, allowed by the localize options.
	for _, w := range m.Wires {
		if _, ok := r.ElidedWires[w]; ok {
			continue
		}
		if r.FeedbackWires[w] {
			continue
		}
		if w.PortID != 0 || w.Keep() {
			continue
		}
		if w.Internal() && !opt.LocalizeInternal {
			continue
		}
		if w.Public() && !opt.LocalizePublic {
			continue
		}
		if r.SyncWires[w] {
			continue
		}
		if len(g.WireDefs(w)) != 1 {
			continue
		}
		r.LocalizedWires[w] = true
	}

	return r, nil
}

func memIDOf(c *ir.Cell) string {
	// $memrd/$memwr/$meminit carry their target memory's name as the
	// MEMID string parameter.
	return c.StrParam("MEMID")
}
