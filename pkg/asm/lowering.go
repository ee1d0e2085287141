package asm

import (
	"fmt"
	"strconv"

	"github.com/stonecutter-forge/n2t/pkg/hack"
)

// ----------------------------------------------------------------------------
// Asm Lowerer

// The Lowerer takes an 'asm.Program' and produces its 'hack.Program' counterpart
// plus a fully resolved 'hack.SymbolTable'.
//
// Symbol resolution happens in two explicit passes, mirroring how the two kinds
// of symbol actually differ: labels are positional (their address only depends
// on where they appear in the instruction stream) while variables are allocated
// on first use in left-to-right program order. Running them as separate passes
// means a variable reference that happens to share a name with a label declared
// later in the file still resolves to the label, never shadows it with a fresh
// allocation.
type Lowerer struct{ program Program }

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program to be not nil nor empty.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p}
}

// Triggers the lowering process: first binds every label declaration to the
// instruction address it refers to (stripping 'LabelDecl' nodes out of the
// resulting stream, since they don't correspond to an actual instruction),
// then resolves every remaining symbolic A Instruction, allocating a new RAM
// slot (starting at address 16) for names seen for the first time that aren't
// a label and aren't a built-in.
func (l *Lowerer) Lower() (hack.Program, hack.SymbolTable, error) {
	if len(l.program) == 0 {
		return nil, nil, fmt.Errorf("the given 'program' is empty")
	}

	instructions, table, err := l.bindLabels()
	if err != nil {
		return nil, nil, err
	}

	converted := make(hack.Program, 0, len(instructions))
	nextVar := uint16(16)

	for _, stmt := range instructions {
		switch tStmt := stmt.(type) {
		case AInstruction:
			hackInst, allocated, err := l.HandleAInst(tStmt, table, nextVar)
			if err != nil {
				return nil, nil, err
			}
			if allocated {
				nextVar++
			}
			converted = append(converted, hackInst)

		case CInstruction:
			hackInst, err := l.HandleCInst(tStmt)
			if err != nil {
				return nil, nil, err
			}
			converted = append(converted, hackInst)

		default:
			return nil, nil, fmt.Errorf("unrecognized instruction '%T'", stmt)
		}
	}

	return converted, table, nil
}

// First pass: walks the program once assigning every 'LabelDecl' the address of
// the next real instruction, then returns the program with label declarations
// removed (they carry no runtime representation of their own).
func (l *Lowerer) bindLabels() ([]Statement, hack.SymbolTable, error) {
	instructions := make([]Statement, 0, len(l.program))
	table := hack.SymbolTable{}

	for _, stmt := range l.program {
		decl, ok := stmt.(LabelDecl)
		if !ok {
			instructions = append(instructions, stmt)
			continue
		}

		label, err := l.HandleLabelDecl(decl)
		if label == "" || err != nil {
			return nil, nil, err
		}
		if _, found := table[label]; found {
			return nil, nil, fmt.Errorf("label '%s' declared more than once", label)
		}
		table[label] = uint16(len(instructions))
	}

	return instructions, table, nil
}

// Specialized function to convert a 'asm.AInstruction' node to an 'hack.AInstruction'.
//
// Returns whether a brand new variable slot was allocated for this reference, so the
// caller can advance its own counter only when that actually happened.
func (Lowerer) HandleAInst(inst AInstruction, table hack.SymbolTable, nextVar uint16) (hack.Instruction, bool, error) {
	// 1) If it's present in the BuiltInTable we set the 'LocType' to 'BuiltIn' accordingly
	if _, found := hack.BuiltInTable[inst.Location]; found {
		return hack.AInstruction{LocType: hack.BuiltIn, LocName: inst.Location}, false, nil
	}
	// 2) If it can be parsed as an int we set the 'LocType' to 'Raw' accordingly
	if _, err := strconv.ParseInt(inst.Location, 10, 16); err == nil {
		return hack.AInstruction{LocType: hack.Raw, LocName: inst.Location}, false, nil
	}
	// 3) If it's already a bound label (from the first pass) we leave it to be resolved
	// by 'hack.CodeGenerator' via the same 'table' we just populated.
	if _, found := table[inst.Location]; found {
		return hack.AInstruction{LocType: hack.Label, LocName: inst.Location}, false, nil
	}
	// 4) Otherwise it's a variable seen for the first time, allocate it a fresh RAM slot.
	table[inst.Location] = nextVar
	return hack.AInstruction{LocType: hack.Label, LocName: inst.Location}, true, nil
}

// Specialized function to convert a 'asm.CInstruction' node to an 'hack.CInstruction'.
func (Lowerer) HandleCInst(inst CInstruction) (hack.Instruction, error) {
	if inst.Comp == "" { // Pre-check: CInstruction.Comp should always be provided
		return nil, fmt.Errorf("'Comp' sub-instruction should always be provided")
	}

	return hack.CInstruction{Comp: inst.Comp, Dest: inst.Dest, Jump: inst.Jump}, nil
}

// Specialized function to extract from a 'asm.LabelDecl' node the identifier of the label.
func (Lowerer) HandleLabelDecl(inst LabelDecl) (string, error) {
	if inst.Name == "" {
		return "", fmt.Errorf("label declaration with an empty name")
	}
	return inst.Name, nil
}
