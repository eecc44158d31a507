package vm

import "fmt"

// Operation is the low two decimal digits of an instruction cell.
type Operation uint8

const (
	OpUnknown            Operation = 0
	OpAdd                Operation = 1
	OpMultiply           Operation = 2
	OpInput              Operation = 3
	OpOutput             Operation = 4
	OpJumpIfTrue         Operation = 5
	OpJumpIfFalse        Operation = 6
	OpLessThan           Operation = 7
	OpEquals             Operation = 8
	OpAdjustRelativeBase Operation = 9
	OpHalt               Operation = 99
)

func (op Operation) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpMultiply:
		return "mul"
	case OpInput:
		return "in"
	case OpOutput:
		return "out"
	case OpJumpIfTrue:
		return "jt"
	case OpJumpIfFalse:
		return "jf"
	case OpLessThan:
		return "lt"
	case OpEquals:
		return "eq"
	case OpAdjustRelativeBase:
		return "arb"
	case OpHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// ParametersCount is the number of cells following the instruction cell
// that belong to it.
func (op Operation) ParametersCount() int {
	switch op {
	case OpAdd, OpMultiply, OpLessThan, OpEquals:
		return 3
	case OpJumpIfTrue, OpJumpIfFalse:
		return 2
	case OpInput, OpOutput, OpAdjustRelativeBase:
		return 1
	default:
		return 0
	}
}

func operationFromSelector(sel int64) Operation {
	switch op := Operation(sel); op {
	case OpAdd, OpMultiply, OpInput, OpOutput,
		OpJumpIfTrue, OpJumpIfFalse, OpLessThan, OpEquals,
		OpAdjustRelativeBase, OpHalt:
		return op
	default:
		return OpUnknown
	}
}

// ParameterMode says how a raw parameter cell is turned into a value or an
// address.
type ParameterMode uint8

const (
	// ModePosition: the raw value is an address.
	ModePosition ParameterMode = 0
	// ModeImmediate: the raw value is the operand. Never a write target.
	ModeImmediate ParameterMode = 1
	// ModeRelative: the raw value is an offset from the relative base.
	ModeRelative ParameterMode = 2
)

func (m ParameterMode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

const maxParameters = 3

// Instruction is a decoded instruction cell.
type Instruction struct {
	Operation Operation
	Modes     [maxParameters]ParameterMode
}

// Decode splits an instruction cell into its operation and parameter
// modes. Mode digits are read least significant first, one per parameter;
// missing digits mean ModePosition. A negative cell, a mode digit above 2,
// or digits left over after the third parameter decode as OpUnknown.
func Decode(cell int64) Instruction {
	if cell < 0 {
		return Instruction{Operation: OpUnknown}
	}

	inst := Instruction{Operation: operationFromSelector(cell % 100)}
	if inst.Operation == OpUnknown {
		return Instruction{Operation: OpUnknown}
	}

	rest := cell / 100
	for i := range inst.Modes {
		digit := rest % 10
		if digit > int64(ModeRelative) {
			return Instruction{Operation: OpUnknown}
		}
		inst.Modes[i] = ParameterMode(digit)
		rest /= 10
	}
	if rest != 0 {
		return Instruction{Operation: OpUnknown}
	}

	return inst
}

// Width is the number of cells the instruction occupies.
func (i Instruction) Width() int {
	return 1 + i.Operation.ParametersCount()
}

func (i Instruction) String() string {
	n := i.Operation.ParametersCount()
	if n == 0 {
		return i.Operation.String()
	}
	return fmt.Sprintf("%s%v", i.Operation, i.Modes[:n])
}
