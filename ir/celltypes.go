// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ir

import "strings"

var unaryCells = map[string]bool{
	"$not": true, "$logic_not": true,
	"$reduce_and": true, "$reduce_or": true, "$reduce_xor": true, "$reduce_xnor": true, "$reduce_bool": true,
	"$pos": true, "$neg": true,
}

var binaryCells = map[string]bool{
	"$and": true, "$or": true, "$xor": true, "$xnor": true, "$logic_and": true, "$logic_or": true,
	"$shl": true, "$sshl": true, "$shr": true, "$sshr": true, "$shift": true, "$shiftx": true,
	"$eq": true, "$ne": true, "$eqx": true, "$nex": true, "$gt": true, "$ge": true, "$lt": true, "$le": true,
	"$add": true, "$sub": true, "$mul": true, "$div": true, "$mod": true,
}

var otherElidableCells = map[string]bool{
	"$mux": true, "$concat": true, "$slice": true,
}

var syncFFCells = map[string]bool{
	"$dff": true, "$dffe": true,
}

var ffCells = map[string]bool{
	"$dff": true, "$dffe": true, "$adff": true, "$dffsr": true, "$dlatch": true, "$dlatchsr": true, "$sr": true,
}

// IsUnaryCell reports whether typ is a single-input combinational primitive.
func IsUnaryCell(typ string) bool { return unaryCells[typ] }

// IsBinaryCell reports whether typ is a two-input combinational primitive.
func IsBinaryCell(typ string) bool { return binaryCells[typ] }

// IsElidableCell reports whether typ's sole output may be elided (unary,
// binary, mux, concat, slice — everything cheap enough to inline).
func IsElidableCell(typ string) bool {
	return IsUnaryCell(typ) || IsBinaryCell(typ) || otherElidableCells[typ]
}

// IsSyncFFCell reports whether typ is a plain synchronous flip-flop
// ($dff/$dffe): the only families that correspond to a posedge/negedge
// sync rule rather than a level-sensitive one.
func IsSyncFFCell(typ string) bool { return syncFFCells[typ] }

// IsFFCell reports whether typ is any flip-flop/latch family.
func IsFFCell(typ string) bool { return ffCells[typ] }

// IsMemCell reports whether typ is a (post-lowering) memory port or init cell.
func IsMemCell(typ string) bool {
	return typ == "$memrd" || typ == "$memwr" || typ == "$meminit"
}

// IsInternalCell reports whether typ names a recognized internal
// primitive: it starts with `$` and is not a parameterized module stub
// (`$paramod\...`), which is a user module in disguise.
func IsInternalCell(typ string) bool {
	return strings.HasPrefix(typ, "$") && !strings.HasPrefix(typ, "$paramod\\")
}

// internalCellInputs and internalCellOutputs list, for each recognized
// internal cell type, which port names are inputs and which are outputs.
// A type matched by IsInternalCell but listed in neither table has no known
// port directions: CellPortDirection reports none for it.
var internalCellInputs = map[string][]string{
	"$not": {"A"}, "$logic_not": {"A"}, "$reduce_and": {"A"}, "$reduce_or": {"A"},
	"$reduce_xor": {"A"}, "$reduce_xnor": {"A"}, "$reduce_bool": {"A"}, "$pos": {"A"}, "$neg": {"A"},

	"$and": {"A", "B"}, "$or": {"A", "B"}, "$xor": {"A", "B"}, "$xnor": {"A", "B"},
	"$logic_and": {"A", "B"}, "$logic_or": {"A", "B"},
	"$shl": {"A", "B"}, "$sshl": {"A", "B"}, "$shr": {"A", "B"}, "$sshr": {"A", "B"},
	"$shift": {"A", "B"}, "$shiftx": {"A", "B"},
	"$eq": {"A", "B"}, "$ne": {"A", "B"}, "$eqx": {"A", "B"}, "$nex": {"A", "B"},
	"$gt": {"A", "B"}, "$ge": {"A", "B"}, "$lt": {"A", "B"}, "$le": {"A", "B"},
	"$add": {"A", "B"}, "$sub": {"A", "B"}, "$mul": {"A", "B"}, "$div": {"A", "B"}, "$mod": {"A", "B"},

	"$mux":    {"A", "B", "S"},
	"$pmux":   {"A", "B", "S"},
	"$concat": {"A", "B"},
	"$slice":  {"A"},

	"$dff":  {"CLK", "D"},
	"$dffe": {"CLK", "EN", "D"},
	"$adff": {"CLK", "ARST", "D"},
	"$dffsr": {"CLK", "SET", "CLR", "D"},
	"$dlatch": {"EN", "D"},
	"$dlatchsr": {"EN", "SET", "CLR", "D"},
	"$sr":     {"SET", "CLR"},

	"$memrd": {"CLK", "EN", "ADDR"},
	"$memwr": {"CLK", "EN", "ADDR", "DATA"},
	"$meminit": {"ADDR", "DATA"},
}

var internalCellOutputs = map[string][]string{
	"$not": {"Y"}, "$logic_not": {"Y"}, "$reduce_and": {"Y"}, "$reduce_or": {"Y"},
	"$reduce_xor": {"Y"}, "$reduce_xnor": {"Y"}, "$reduce_bool": {"Y"}, "$pos": {"Y"}, "$neg": {"Y"},

	"$and": {"Y"}, "$or": {"Y"}, "$xor": {"Y"}, "$xnor": {"Y"}, "$logic_and": {"Y"}, "$logic_or": {"Y"},
	"$shl": {"Y"}, "$sshl": {"Y"}, "$shr": {"Y"}, "$sshr": {"Y"}, "$shift": {"Y"}, "$shiftx": {"Y"},
	"$eq": {"Y"}, "$ne": {"Y"}, "$eqx": {"Y"}, "$nex": {"Y"}, "$gt": {"Y"}, "$ge": {"Y"}, "$lt": {"Y"}, "$le": {"Y"},
	"$add": {"Y"}, "$sub": {"Y"}, "$mul": {"Y"}, "$div": {"Y"}, "$mod": {"Y"},

	"$mux": {"Y"}, "$pmux": {"Y"}, "$concat": {"Y"}, "$slice": {"Y"},

	"$dff": {"Q"}, "$dffe": {"Q"}, "$adff": {"Q"}, "$dffsr": {"Q"}, "$dlatch": {"Q"}, "$dlatchsr": {"Q"}, "$sr": {"Q"},

	"$memrd": {"DATA"},
	// $memwr and $meminit have no outputs.
}

// CellInputPorts returns the input port names for an internal cell type.
func CellInputPorts(typ string) []string { return internalCellInputs[typ] }

// CellOutputPorts returns the output port names for an internal cell type.
func CellOutputPorts(typ string) []string { return internalCellOutputs[typ] }

// CellPortDirection reports the direction of port on a cell of the given
// type. For internal cells this consults the fixed tables above; for user
// cells (any type not matched by IsInternalCell) the caller must resolve
// direction via the referenced Module's ports — see Design.CellPortDirection.
func CellPortDirection(typ, port string) (PortDirection, bool) {
	for _, p := range internalCellInputs[typ] {
		if p == port {
			return Input, true
		}
	}
	for _, p := range internalCellOutputs[typ] {
		if p == port {
			return Output, true
		}
	}
	return 0, false
}

// CellPortDirection resolves the direction of a cell port, consulting the
// design's module table when cell is a user instance.
func (d *Design) CellPortDirection(cell *Cell, port string) (PortDirection, bool) {
	if IsInternalCell(cell.Type) {
		return CellPortDirection(cell.Type, port)
	}
	mod := d.ModuleByName(cell.Type)
	if mod == nil {
		return 0, false
	}
	return mod.PortDirection(port)
}
