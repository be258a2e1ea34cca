// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ir

import "github.com/pkg/errors"

// CheckSelection reports an error if sel reports PartiallySelected for any
// module: emitting only some of a module's wires and cells is not
// supported, the same restriction cxxrtl_backend.cc enforces by rejecting
// a selection that is selected_module but not selected_whole_module.
func (d *Design) CheckSelection(sel Selection) error {
	if sel == nil {
		return errors.New("ir: nil selection")
	}
	for _, m := range d.Modules {
		if sel(m) == PartiallySelected {
			return errors.Errorf("ir: module %q is only partially selected; partial-module code generation is not supported", m.Name)
		}
	}
	return nil
}

// CheckLowered verifies a Design is in the form the rest of this module
// requires: every process's sync rules must already be resolved to
// posedge/negedge/edge/level triggers, and memories must already be split
// into $memrd/$memwr/$meminit cells. A frontend that has not run those
// lowering passes will trip this check rather than produce a bad emission.
func CheckLowered(d *Design) error {
	for _, m := range d.Modules {
		for _, p := range m.Processes {
			for _, s := range p.Syncs {
				if s.Type == STi {
					return errors.Errorf("ir: module %q: process %q has an unlowered init (STi) sync rule", m.Name, p.Name)
				}
				if s.Type == STg {
					return errors.Errorf("ir: module %q: process %q uses an unsupported global clock sync rule", m.Name, p.Name)
				}
			}
		}
		for _, c := range m.Cells {
			if c.Type == "$mem" || c.Type == "$mem_v2" {
				return errors.Errorf("ir: module %q: cell %q is an unlowered $mem cell; split into $memrd/$memwr/$meminit first", m.Name, c.Name)
			}
		}
	}
	return nil
}

// TopoSort returns the design's modules in dependency order: every module
// appears after all modules it instantiates. It reports an error if the
// instantiation graph has a cycle, which combinational hardware cannot.
func (d *Design) TopoSort() ([]*Module, error) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*Module]int, len(d.Modules))
	var order []*Module

	var visit func(m *Module) error
	visit = func(m *Module) error {
		switch color[m] {
		case black:
			return nil
		case gray:
			return errors.Errorf("ir: instantiation cycle involving module %q", m.Name)
		}
		color[m] = gray
		for _, c := range m.Cells {
			if IsInternalCell(c.Type) {
				continue
			}
			sub := d.ModuleByName(c.Type)
			if sub == nil {
				continue // undefined submodule is a caller error, not a cycle
			}
			if err := visit(sub); err != nil {
				return err
			}
		}
		color[m] = black
		order = append(order, m)
		return nil
	}

	for _, m := range d.Modules {
		if err := visit(m); err != nil {
			return nil, err
		}
	}
	return order, nil
}
