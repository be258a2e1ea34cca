// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/gsomlo/yosys/ir"
)

// Since IR parsing is out of scope for the core module, this file is the
// CLI's own small frontend: a JSON-encoded design fixture, for tests and
// demos, decoded into the same ir.Design the core operates on. A real
// frontend (an RTLIL or netlist JSON reader) would replace this file
// without touching anything downstream of ir.Design.

// fixture mirrors ir.Design's shape as plain, JSON-friendly data: signals
// are referenced by name rather than pointer, and reconstructed into
// ir.SigSpec by sigSpec's mini-language.
type fixture struct {
	Modules []fixModule `json:"modules"`
}

type fixModule struct {
	Name        string       `json:"name"`
	Wires       []fixWire    `json:"wires"`
	Memories    []fixMemory  `json:"memories"`
	Cells       []fixCell    `json:"cells"`
	Connections []fixAssign  `json:"connections"`
	Processes   []fixProcess `json:"processes"`
}

type fixWire struct {
	Name    string           `json:"name"`
	Width   int              `json:"width"`
	PortID  int              `json:"port_id"`
	PortDir string           `json:"port_dir"` // "input", "output", "inout"
	Attrs   map[string]int64 `json:"attrs"`
}

type fixMemory struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Size        int    `json:"size"`
	StartOffset int    `json:"start_offset"`
}

type fixCell struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Ports     map[string]json.RawMessage `json:"ports"`
	Params    map[string]int64  `json:"params"`
	ParamsW   map[string]int    `json:"params_width"` // optional explicit widths
	StrParams map[string]string `json:"str_params"`
}

type fixAssign struct {
	LHS json.RawMessage `json:"lhs"`
	RHS json.RawMessage `json:"rhs"`
}

type fixProcess struct {
	Name  string        `json:"name"`
	Root  fixCaseRule   `json:"root_case"`
	Syncs []fixSyncRule `json:"syncs"`
}

type fixCaseRule struct {
	Actions  []fixAssign     `json:"actions"`
	Switches []fixSwitchRule `json:"switches"`
}

type fixSwitchRule struct {
	Signal json.RawMessage `json:"signal"`
	Cases  []fixCaseLabel  `json:"cases"`
}

type fixCaseLabel struct {
	Compare []json.RawMessage `json:"compare"`
	fixCaseRule
}

type fixSyncRule struct {
	Type    string      `json:"type"` // posedge, negedge, edge, level0, level1, always
	Signal  json.RawMessage `json:"signal"`
	Actions []fixAssign `json:"actions"`
}

// toDesign converts a decoded fixture into an *ir.Design. Wire references
// within a module are resolved after all of that module's wires exist, so
// forward references (a cell wired to a wire declared later in the file)
// work.
func (f *fixture) toDesign() (*ir.Design, error) {
	modules := make([]*ir.Module, 0, len(f.Modules))
	for _, fm := range f.Modules {
		m := &ir.Module{Name: fm.Name}
		for _, fw := range fm.Wires {
			w := &ir.Wire{Name: fw.Name, Width: fw.Width, PortID: fw.PortID}
			switch fw.PortDir {
			case "", "input":
				w.PortDir = ir.Input
			case "output":
				w.PortDir = ir.Output
			case "inout":
				w.PortDir = ir.InOut
			default:
				return nil, errors.Errorf("fixture: wire %q: unknown port_dir %q", fw.Name, fw.PortDir)
			}
			if len(fw.Attrs) > 0 {
				w.Attrs = make(map[string]ir.Const, len(fw.Attrs))
				for k, v := range fw.Attrs {
					w.Attrs[k] = ir.ConstFromUint(uint64(v), w.Width)
				}
			}
			m.Wires = append(m.Wires, w)
		}
		lookup := func(name string) (*ir.Wire, error) {
			for _, w := range m.Wires {
				if w.Name == name {
					return w, nil
				}
			}
			return nil, errors.Errorf("fixture: module %q: undefined wire %q", fm.Name, name)
		}
		sig := func(raw json.RawMessage) (ir.SigSpec, error) {
			return parseSigSpec(raw, lookup)
		}

		for _, fmem := range fm.Memories {
			m.Memories = append(m.Memories, &ir.Memory{
				Name: fmem.Name, Width: fmem.Width, Size: fmem.Size, StartOffset: fmem.StartOffset,
			})
		}

		for _, fc := range fm.Cells {
			c := &ir.Cell{Name: fc.Name, Type: fc.Type, Ports: map[string]ir.SigSpec{}, Params: map[string]ir.Const{}, StrParams: fc.StrParams}
			for name, raw := range fc.Ports {
				s, err := sig(raw)
				if err != nil {
					return nil, errors.Wrapf(err, "fixture: cell %q port %q", fc.Name, name)
				}
				c.Ports[name] = s
			}
			for name, v := range fc.Params {
				width := fc.ParamsW[name]
				if width == 0 {
					width = 32
				}
				c.Params[name] = ir.ConstFromUint(uint64(v), width)
			}
			m.Cells = append(m.Cells, c)
		}

		for _, fa := range fm.Connections {
			a, err := toAssign(fa, sig)
			if err != nil {
				return nil, errors.Wrapf(err, "fixture: module %q connection", fm.Name)
			}
			m.Connections = append(m.Connections, a)
		}

		for _, fp := range fm.Processes {
			p := &ir.Process{Name: fp.Name}
			root, err := toCaseRule(fp.Root, sig)
			if err != nil {
				return nil, errors.Wrapf(err, "fixture: process %q", fp.Name)
			}
			p.RootCase = root
			for _, fs := range fp.Syncs {
				typ, err := parseSyncType(fs.Type)
				if err != nil {
					return nil, errors.Wrapf(err, "fixture: process %q sync", fp.Name)
				}
				sigspec, err := sig(fs.Signal)
				if err != nil {
					return nil, errors.Wrapf(err, "fixture: process %q sync signal", fp.Name)
				}
				actions, err := toAssigns(fs.Actions, sig)
				if err != nil {
					return nil, errors.Wrapf(err, "fixture: process %q sync actions", fp.Name)
				}
				p.Syncs = append(p.Syncs, &ir.SyncRule{Type: typ, Signal: sigspec, Actions: actions})
			}
			m.Processes = append(m.Processes, p)
		}

		modules = append(modules, m)
	}
	return ir.NewDesign(modules), nil
}

func toAssign(fa fixAssign, sig func(json.RawMessage) (ir.SigSpec, error)) (ir.Assign, error) {
	lhs, err := sig(fa.LHS)
	if err != nil {
		return ir.Assign{}, errors.Wrap(err, "lhs")
	}
	rhs, err := sig(fa.RHS)
	if err != nil {
		return ir.Assign{}, errors.Wrap(err, "rhs")
	}
	return ir.Assign{LHS: lhs, RHS: rhs}, nil
}

func toAssigns(fas []fixAssign, sig func(json.RawMessage) (ir.SigSpec, error)) ([]ir.Assign, error) {
	out := make([]ir.Assign, 0, len(fas))
	for _, fa := range fas {
		a, err := toAssign(fa, sig)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func toCaseRule(fc fixCaseRule, sig func(json.RawMessage) (ir.SigSpec, error)) (*ir.CaseRule, error) {
	actions, err := toAssigns(fc.Actions, sig)
	if err != nil {
		return nil, err
	}
	cr := &ir.CaseRule{Actions: actions}
	for _, fsw := range fc.Switches {
		sw, err := toSwitchRule(fsw, sig)
		if err != nil {
			return nil, err
		}
		cr.Switches = append(cr.Switches, sw)
	}
	return cr, nil
}

func toSwitchRule(fsw fixSwitchRule, sig func(json.RawMessage) (ir.SigSpec, error)) (*ir.SwitchRule, error) {
	signal, err := sig(fsw.Signal)
	if err != nil {
		return nil, errors.Wrap(err, "switch signal")
	}
	sw := &ir.SwitchRule{Signal: signal}
	for _, fcl := range fsw.Cases {
		cr, err := toCaseRule(fcl.fixCaseRule, sig)
		if err != nil {
			return nil, err
		}
		for _, rawCmp := range fcl.Compare {
			cmp, err := sig(rawCmp)
			if err != nil {
				return nil, errors.Wrap(err, "case compare")
			}
			cr.Compare = append(cr.Compare, cmp)
		}
		sw.Cases = append(sw.Cases, cr)
	}
	return sw, nil
}

func parseSyncType(s string) (ir.SyncType, error) {
	switch s {
	case "posedge":
		return ir.STp, nil
	case "negedge":
		return ir.STn, nil
	case "edge":
		return ir.STe, nil
	case "level0":
		return ir.ST0, nil
	case "level1":
		return ir.ST1, nil
	case "always":
		return ir.STa, nil
	default:
		return 0, errors.Errorf("unknown sync type %q", s)
	}
}

// parseSigSpec decodes a signal reference, which is either a single chunk
// spec string or a JSON array of chunk spec strings given LSB-chunk-first
// (matching ir.SigSpec.Chunks order directly). A chunk spec is one of:
//
//	"wirename"              whole wire
//	"wirename@offset:width" a slice of a wire
//	"c<width>:<value>"      a fully-defined constant, e.g. "c8:255"
func parseSigSpec(raw json.RawMessage, lookup func(string) (*ir.Wire, error)) (ir.SigSpec, error) {
	if len(raw) == 0 {
		return ir.SigSpec{}, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return parseSigSpecChunks([]string{single}, lookup)
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return ir.SigSpec{}, errors.Wrap(err, "sigspec must be a string or array of strings")
	}
	return parseSigSpecChunks(many, lookup)
}

func parseSigSpecChunks(specs []string, lookup func(string) (*ir.Wire, error)) (ir.SigSpec, error) {
	var out ir.SigSpec
	for _, spec := range specs {
		chunk, err := parseChunk(spec, lookup)
		if err != nil {
			return ir.SigSpec{}, errors.Wrapf(err, "chunk %q", spec)
		}
		out.Chunks = append(out.Chunks, chunk)
	}
	return out, nil
}

func parseChunk(spec string, lookup func(string) (*ir.Wire, error)) (ir.SigChunk, error) {
	if strings.HasPrefix(spec, "c") {
		rest := spec[1:]
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			return ir.SigChunk{}, errors.New("constant chunk must be c<width>:<value>")
		}
		width, err := strconv.Atoi(rest[:colon])
		if err != nil {
			return ir.SigChunk{}, errors.Wrap(err, "constant width")
		}
		value, err := strconv.ParseUint(rest[colon+1:], 10, 64)
		if err != nil {
			return ir.SigChunk{}, errors.Wrap(err, "constant value")
		}
		return ir.SigChunk{Data: ir.ConstFromUint(value, width), Width: width}, nil
	}
	if at := strings.IndexByte(spec, '@'); at >= 0 {
		name, rest := spec[:at], spec[at+1:]
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			return ir.SigChunk{}, errors.New("wire slice must be name@offset:width")
		}
		offset, err := strconv.Atoi(rest[:colon])
		if err != nil {
			return ir.SigChunk{}, errors.Wrap(err, "slice offset")
		}
		width, err := strconv.Atoi(rest[colon+1:])
		if err != nil {
			return ir.SigChunk{}, errors.Wrap(err, "slice width")
		}
		w, err := lookup(name)
		if err != nil {
			return ir.SigChunk{}, err
		}
		return ir.SigChunk{Wire: w, Offset: offset, Width: width}, nil
	}
	w, err := lookup(spec)
	if err != nil {
		return ir.SigChunk{}, err
	}
	return ir.SigChunk{Wire: w, Offset: 0, Width: w.Width}, nil
}
