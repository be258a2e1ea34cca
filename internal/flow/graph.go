// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package flow builds a def/use graph over one module's connections, cells
// and processes, and schedules its nodes into an evaluation order that
// minimizes feedback (see Scheduler). The graph also tracks, per wire,
// whether its unique definition and unique use (if both exist) may be
// elided — collapsed into a single expression rather than passed through
// a struct field.
package flow

import "github.com/gsomlo/yosys/ir"

// NodeType tags what a Node wraps.
type NodeType int

const (
	NodeConnect NodeType = iota
	NodeCell
	NodeProcess
)

// A Node is one schedulable unit: a continuous assignment, a cell
// instance, or a process. Exactly one of Connect/Cell/Process is set,
// matching Type.
type Node struct {
	Type    NodeType
	Connect ir.Assign
	Cell    *ir.Cell
	Process *ir.Process
}

// Graph is the def/use graph for a single module.
type Graph struct {
	design *ir.Design
	module *ir.Module

	Nodes []*Node

	wireDefs map[*ir.Wire][]*Node
	wireUses map[*ir.Wire][]*Node

	defElidable map[*ir.Wire]bool
	useElidable map[*ir.Wire]bool
	useSeen     map[*ir.Wire]bool
}

// New builds an empty graph for m. design is consulted only to resolve
// port directions of user cell instances.
func New(design *ir.Design, m *ir.Module) *Graph {
	return &Graph{
		design:      design,
		module:      m,
		wireDefs:    make(map[*ir.Wire][]*Node),
		wireUses:    make(map[*ir.Wire][]*Node),
		defElidable: make(map[*ir.Wire]bool),
		useElidable: make(map[*ir.Wire]bool),
		useSeen:     make(map[*ir.Wire]bool),
	}
}

// WireDefs returns the nodes that define wire w.
func (g *Graph) WireDefs(w *ir.Wire) []*Node { return g.wireDefs[w] }

// WireUses returns the nodes that use wire w.
func (g *Graph) WireUses(w *ir.Wire) []*Node { return g.wireUses[w] }

// IsElidable reports whether w has exactly one elidable def and exactly
// one elidable use, and may therefore be inlined at its use site instead
// of stored in curr/next registers.
func (g *Graph) IsElidable(w *ir.Wire) bool {
	de, defOK := g.defElidable[w]
	ue, useOK := g.useElidable[w]
	return defOK && useOK && de && ue
}

func (g *Graph) addDefs(n *Node, sig ir.SigSpec, elidable bool) {
	for _, c := range sig.Chunks {
		if c.IsConst() {
			continue
		}
		g.wireDefs[c.Wire] = append(g.wireDefs[c.Wire], n)
	}
	// Only a def of an entire wire, in natural bit order, can be elided.
	if sig.IsWire() {
		g.defElidable[sig.AsWire()] = elidable
	}
}

func (g *Graph) addUses(n *Node, sig ir.SigSpec) {
	for _, c := range sig.Chunks {
		if c.IsConst() {
			continue
		}
		g.wireUses[c.Wire] = append(g.wireUses[c.Wire], n)
		// Only a single use of an entire wire, in natural bit order, can be
		// elided — and only if no other use of that wire exists anywhere,
		// even nested inside a larger signal.
		if !g.useSeen[c.Wire] {
			g.useSeen[c.Wire] = true
			g.useElidable[c.Wire] = sig.IsWire()
		} else {
			g.useElidable[c.Wire] = false
		}
	}
}

// AddUses records additional, synthetic uses of sig at an existing node.
// This is used to model dependencies not directly visible in the netlist,
// such as a transparent memory read port's implicit dependency on the
// write ports in its domain.
func (g *Graph) AddUses(n *Node, sig ir.SigSpec) { g.addUses(n, sig) }

// AddConnect adds one continuous assignment to the graph.
func (g *Graph) AddConnect(a ir.Assign) *Node {
	n := &Node{Type: NodeConnect, Connect: a}
	g.Nodes = append(g.Nodes, n)
	g.addDefs(n, a.LHS, true)
	g.addUses(n, a.RHS)
	return n
}

// AddCell adds one cell instance to the graph.
func (g *Graph) AddCell(c *ir.Cell) *Node {
	n := &Node{Type: NodeCell, Cell: c}
	g.Nodes = append(g.Nodes, n)
	for name, sig := range c.Ports {
		dir, known := g.design.CellPortDirection(c, name)
		if !known {
			continue
		}
		if dir == ir.Output || dir == ir.InOut {
			switch {
			case ir.IsSyncFFCell(c.Type):
				// Registered outputs do not introduce a def: the value comes
				// from the curr/next register pair, not from evaluating a
				// combinational expression at this node.
			case c.Type == "$memrd" && c.ParamBool("CLK_ENABLE"):
				// Same reasoning for a clocked (registered) memory read port.
			case ir.IsElidableCell(c.Type):
				g.addDefs(n, sig, true)
			case ir.IsInternalCell(c.Type):
				g.addDefs(n, sig, false)
			default:
				// User cell output: the wire it drives can still be elided
				// away, since only the *cell's* internal bits are fixed.
				g.addDefs(n, sig, true)
			}
		}
		if dir == ir.Input || dir == ir.InOut {
			g.addUses(n, sig)
		}
	}
	return n
}

func (g *Graph) addCaseDefsUses(n *Node, cr *ir.CaseRule) {
	for _, a := range cr.Actions {
		g.addDefs(n, a.LHS, false)
		g.addUses(n, a.RHS)
	}
	for _, sw := range cr.Switches {
		g.addUses(n, sw.Signal)
		for _, sub := range sw.Cases {
			for _, cmp := range sub.Compare {
				g.addUses(n, cmp)
			}
			g.addCaseDefsUses(n, sub)
		}
	}
}

// AddProcess adds one process to the graph.
func (g *Graph) AddProcess(p *ir.Process) *Node {
	n := &Node{Type: NodeProcess, Process: p}
	g.Nodes = append(g.Nodes, n)
	g.addCaseDefsUses(n, p.RootCase)
	for _, sync := range p.Syncs {
		for _, a := range sync.Actions {
			if !sync.Type.IsEdge() {
				g.addDefs(n, a.LHS, false)
			}
			// Edge-triggered sync actions land in a register's next value;
			// they never feed back into this cycle's combinational eval.
			g.addUses(n, a.RHS)
		}
	}
	return n
}
