package vm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stonecutter-forge/n2t/pkg/asm"
)

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a parsed 'vm.Module' (one translation unit, i.e. one '.vm'
// file) and produces its 'asm.Program' counterpart - a flat, executable sequence
// of Hack assembly instructions implementing the stack machine semantics of the
// VM language on top of Hack's single data/address register CPU.
//
// Every operation is visited once in program order (no DFS is needed since a
// Module is already a flat instruction list, not a tree); comparisons and call
// sites each get a unique label derived from the module name and a monotonic
// counter so that concatenating multiple modules into a single .asm file (the
// VM Translator does this for whole-directory input, see cmd/vm_translator)
// never produces a label collision.
type Lowerer struct {
	module string // File stem this module was translated from, used to namespace labels/statics.
	nCmp   uint   // Monotonic counter, used to keep every comparison's labels unique
	nCall  uint   // Monotonic counter, used to keep every call-site's return label unique
}

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// 'module' should be the '.vm' file's stem (no directory, no extension), it is
// embedded into every generated label and into every resolved 'static' address.
func NewLowerer(module string) Lowerer {
	stem := strings.TrimSuffix(filepath.Base(module), filepath.Ext(module))
	return Lowerer{module: stem}
}

// Triggers the lowering process, translating every operation of 'mod' in order.
func (l *Lowerer) Lower(mod Module) (asm.Program, error) {
	program := asm.Program{}

	for _, op := range mod {
		var (
			instructions []asm.Instruction
			err          error
		)

		switch tOp := op.(type) {
		case MemoryOp:
			instructions, err = l.HandleMemoryOp(tOp)
		case ArithmeticOp:
			instructions, err = l.HandleArithmeticOp(tOp)
		case LabelDecl:
			instructions, err = l.HandleLabelDecl(tOp)
		case GotoOp:
			instructions, err = l.HandleGotoOp(tOp)
		case FuncDecl:
			instructions, err = l.HandleFuncDecl(tOp)
		case FuncCallOp:
			instructions, err = l.HandleFuncCallOp(tOp)
		case ReturnOp:
			instructions, err = l.HandleReturnOp(tOp)
		default:
			err = fmt.Errorf("unrecognized operation '%T'", op)
		}

		if err != nil {
			return nil, err
		}
		for _, inst := range instructions {
			program = append(program, inst)
		}
	}

	return program, nil
}

// Bootstrap produces the handful of instructions that must run before any user code: it
// sets SP to 256 (the first usable stack slot, RAM 0-15 are reserved for the VM's own
// pointers/temps) and calls Sys.init the same way any other VM function call would be
// lowered, so the callee sees a well-formed (if synthetic) caller frame.
func Bootstrap() (asm.Program, error) {
	bootLowerer := NewLowerer("Bootstrap")

	setSP := asm.Program{
		asm.AInstruction{Location: "256"},
		asm.CInstruction{Dest: "D", Comp: "A"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}

	call, err := bootLowerer.HandleFuncCallOp(FuncCallOp{Name: "Sys.init", NArgs: 0})
	if err != nil {
		return nil, err
	}

	for _, inst := range call {
		setSP = append(setSP, inst)
	}
	return setSP, nil
}

// ----------------------------------------------------------------------------
// Memory operations

// segmentBase maps a real (non-virtual) segment to the built-in label that
// holds its base address, per the canonical Hack memory map.
var segmentBase = map[SegmentType]string{
	Local:    "LCL",
	Argument: "ARG",
	This:     "THIS",
	That:     "THAT",
}

// Specialized function to lower a 'MemoryOp' (push/pop) to its Hack assembly equivalent.
func (l *Lowerer) HandleMemoryOp(op MemoryOp) ([]asm.Instruction, error) {
	switch op.Segment {
	case Constant:
		if op.Operation == Pop {
			return nil, fmt.Errorf("cannot pop into the read-only 'constant' segment")
		}
		return l.pushValue(asm.AInstruction{Location: fmt.Sprint(op.Offset)}, "A"), nil

	case Local, Argument, This, That:
		return l.memoryOpIndirect(op, segmentBase[op.Segment])

	case Temp:
		if op.Offset > 7 {
			return nil, fmt.Errorf("invalid 'temp' offset, got %d", op.Offset)
		}
		return l.memoryOpFixed(op, 5+op.Offset)

	case Pointer:
		if op.Offset > 1 {
			return nil, fmt.Errorf("invalid 'pointer' offset, got %d", op.Offset)
		}
		target := "THIS"
		if op.Offset == 1 {
			target = "THAT"
		}
		return l.memoryOpFixedLabel(op, target)

	case Static:
		return l.memoryOpFixedLabel(op, fmt.Sprintf("%s.%d", l.module, op.Offset))

	default:
		return nil, fmt.Errorf("unrecognized segment '%s'", op.Segment)
	}
}

// Pushes the value addressed by 'loc' (computed with comp 'comp', e.g. "A" for a
// constant already loaded into A, or "M" for a value sitting at *A) onto the stack.
func (l *Lowerer) pushValue(loc asm.AInstruction, comp string) []asm.Instruction {
	return []asm.Instruction{
		loc,
		asm.CInstruction{Dest: "D", Comp: comp},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M+1"}, // SP++ first...
		asm.CInstruction{Dest: "A", Comp: "M-1"}, // ...then address the freshly reserved slot
		asm.CInstruction{Dest: "M", Comp: "D"},
	}
}

// Lowers push/pop for a segment whose base address lives in a named register (LCL/ARG/THIS/THAT)
// and is offset by 'op.Offset' (e.g. "push local 3" reads *(LCL+3)).
func (l *Lowerer) memoryOpIndirect(op MemoryOp, base string) ([]asm.Instruction, error) {
	resolveAddress := []asm.Instruction{
		asm.AInstruction{Location: base},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: fmt.Sprint(op.Offset)},
		asm.CInstruction{Dest: "D", Comp: "D+A"},
	}

	switch op.Operation {
	case Push:
		return append(resolveAddress, []asm.Instruction{
			asm.CInstruction{Dest: "A", Comp: "D"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "M+1"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}...), nil

	case Pop:
		// Stash the target address in R13 (the VM spec's documented scratch register for this),
		// since D is about to be reused to hold the value popped off the stack.
		return append(resolveAddress, []asm.Instruction{
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "D"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "MD", Comp: "M-1"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}...), nil

	default:
		return nil, fmt.Errorf("unrecognized OperationType '%s'", op.Operation)
	}
}

// Lowers push/pop for a segment at a fixed numeric RAM address (temp).
func (l *Lowerer) memoryOpFixed(op MemoryOp, address uint16) ([]asm.Instruction, error) {
	return l.memoryOpFixedLabel(op, fmt.Sprint(address))
}

// Lowers push/pop for a segment addressed by a single fixed location, named either by a
// raw numeric address (temp) or a symbolic built-in/static label (pointer, static).
func (l *Lowerer) memoryOpFixedLabel(op MemoryOp, location string) ([]asm.Instruction, error) {
	switch op.Operation {
	case Push:
		return l.pushValue(asm.AInstruction{Location: location}, "M"), nil

	case Pop:
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "MD", Comp: "M-1"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: location},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}, nil

	default:
		return nil, fmt.Errorf("unrecognized OperationType '%s'", op.Operation)
	}
}

// ----------------------------------------------------------------------------
// Arithmetic operations

// unaryOps maps a unary VM operator to the Hack comp mnemonic applied to the stack's top in place.
var unaryOps = map[ArithOpType]string{Neg: "-M", Not: "!M"}

// binaryOps maps a binary VM operator to the Hack comp mnemonic combining D (second operand,
// popped first) with M (first operand, now addressed by A after the pointer decrement below).
var binaryOps = map[ArithOpType]string{Add: "D+M", Sub: "M-D", And: "D&M", Or: "D|M"}

// comparisonJumps maps a comparison VM operator to the Hack jump mnemonic that should fire
// when 'first - second' satisfies the comparison (true branch pushes -1, false branch pushes 0).
var comparisonJumps = map[ArithOpType]string{Eq: "JEQ", Gt: "JGT", Lt: "JLT"}

// Specialized function to lower an 'ArithmeticOp' to its Hack assembly equivalent.
func (l *Lowerer) HandleArithmeticOp(op ArithmeticOp) ([]asm.Instruction, error) {
	if comp, ok := unaryOps[op.Operation]; ok {
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: comp},
		}, nil
	}

	if comp, ok := binaryOps[op.Operation]; ok {
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"}, // SP--, A now addresses the second (last pushed) operand
			asm.CInstruction{Dest: "D", Comp: "M"},    // D = second operand's value
			asm.CInstruction{Dest: "A", Comp: "A-1"},  // A now addresses the first operand, one slot below
			asm.CInstruction{Dest: "M", Comp: comp},   // overwrite the first operand in place with the result
		}, nil
	}

	if jump, ok := comparisonJumps[op.Operation]; ok {
		l.nCmp++
		trueLabel := fmt.Sprintf("__CMP_%s_%d", l.module, l.nCmp)
		endLabel := fmt.Sprintf("__END_CMP_%s_%d", l.module, l.nCmp)

		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "D", Comp: "M-D"},
			asm.AInstruction{Location: trueLabel},
			asm.CInstruction{Comp: "D", Jump: jump},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.AInstruction{Location: endLabel},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
			asm.LabelDecl{Name: trueLabel},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "-1"},
			asm.LabelDecl{Name: endLabel},
		}, nil
	}

	return nil, fmt.Errorf("unrecognized ArithOpType '%s'", op.Operation)
}

// ----------------------------------------------------------------------------
// Branching operations

// Specialized function to lower a 'LabelDecl' to its Hack assembly equivalent.
func (l *Lowerer) HandleLabelDecl(op LabelDecl) ([]asm.Instruction, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to lower an empty label declaration")
	}
	return []asm.Instruction{asm.LabelDecl{Name: op.Name}}, nil
}

// Specialized function to lower a 'GotoOp' to its Hack assembly equivalent.
func (l *Lowerer) HandleGotoOp(op GotoOp) ([]asm.Instruction, error) {
	if op.Label == "" {
		return nil, fmt.Errorf("unable to lower a jump to an empty label")
	}

	if op.Jump == Unconditional {
		return []asm.Instruction{
			asm.AInstruction{Location: op.Label},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
		}, nil
	}

	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "MD", Comp: "M-1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: op.Label},
		asm.CInstruction{Comp: "D", Jump: "JNE"},
	}, nil
}

// ----------------------------------------------------------------------------
// Function operations

// Specialized function to lower a 'FuncDecl' to its Hack assembly equivalent: a label
// naming the function, followed by pushing 'NLocal' zeroed locals onto the stack.
func (l *Lowerer) HandleFuncDecl(op FuncDecl) ([]asm.Instruction, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to lower a function declaration with an empty name")
	}

	instructions := []asm.Instruction{asm.LabelDecl{Name: op.Name}}
	for i := uint8(0); i < op.NLocal; i++ {
		instructions = append(instructions, l.pushValue(asm.AInstruction{Location: "0"}, "A")...)
	}
	return instructions, nil
}

// Specialized function to lower a 'FuncCallOp' to its Hack assembly equivalent: the standard
// nand2tetris call protocol - push the return address and the caller's four saved segment
// pointers, reposition ARG/LCL for the callee, then jump into it.
func (l *Lowerer) HandleFuncCallOp(op FuncCallOp) ([]asm.Instruction, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to lower a function call with an empty name")
	}

	l.nCall++
	returnLabel := fmt.Sprintf("%s$ret.%s.%d", op.Name, l.module, l.nCall)

	instructions := []asm.Instruction{}
	// Push the return address and the caller's saved frame (LCL, ARG, THIS, THAT).
	instructions = append(instructions, l.pushValue(asm.AInstruction{Location: returnLabel}, "A")...)
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		instructions = append(instructions, l.pushValue(asm.AInstruction{Location: reg}, "M")...)
	}

	// ARG = SP - 5 - nArgs (repositions ARG to the start of the callee's arguments).
	instructions = append(instructions, []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: fmt.Sprint(5 + int(op.NArgs))},
		asm.CInstruction{Dest: "D", Comp: "D-A"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// LCL = SP (the callee's locals start right where the stack currently sits).
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// Transfer control to the callee.
		asm.AInstruction{Location: op.Name},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
		asm.LabelDecl{Name: returnLabel},
	}...)

	return instructions, nil
}

// Specialized function to lower a 'ReturnOp' to its Hack assembly equivalent: restores the
// caller's frame and jumps back to its return address, leaving the callee's result on top
// of what is now the caller's stack. Uses R13/R14 as scratch registers for the saved frame
// address and the return address, per the documented convention for this protocol.
func (l *Lowerer) HandleReturnOp(ReturnOp) ([]asm.Instruction, error) {
	return []asm.Instruction{
		// R13 = LCL (a temporary alias for the frame, since LCL gets overwritten before we're done with it)
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// R14 = *(R13 - 5) (the return address, read before any of the frame is overwritten)
		asm.AInstruction{Location: "5"},
		asm.CInstruction{Dest: "A", Comp: "D-A"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// *ARG = pop() (places the return value where the caller expects its first argument to have been)
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "MD", Comp: "M-1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// SP = ARG + 1 (pops every argument and local the callee used off the stack)
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "D", Comp: "M+1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// Restore THAT, THIS, ARG, LCL, in that order, each one slot further back from R13.
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "THAT"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "THIS"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// Jump back to the caller.
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	}, nil
}
