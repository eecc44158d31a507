package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrWriteToConstant is returned when an immediate mode parameter is
	// used as a write target.
	ErrWriteToConstant = errors.New("write to constant prohibited")
	// ErrPartialOpcode is returned when fewer parameter cells follow an
	// instruction than its operation needs.
	ErrPartialOpcode = errors.New("partial opcode: missing parameter cells")
	// ErrInsufficientInput is returned by Execute when an input instruction
	// finds no value. The Interpreter suspends instead.
	ErrInsufficientInput = errors.New("insufficient input data")
	// ErrConsumed is reported by an Interpreter after IntoOutput.
	ErrConsumed = errors.New("interpreter consumed")
)

type UnknownOpcodeError struct {
	Opcode int64
	Index  int64
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %d at index %d", e.Opcode, e.Index)
}

type NegativeIndexError struct {
	Index int64
}

func (e *NegativeIndexError) Error() string {
	return fmt.Sprintf("negative index %d", e.Index)
}

// OverflowError reports an add, multiply or relative address whose result
// does not fit in 64 bits.
type OverflowError struct {
	Operation Operation
	A, B      int64
	Index     int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s overflow at index %d: %d, %d", e.Operation, e.Index, e.A, e.B)
}

// AddressRangeError is returned for writes above the AddressLimit of a
// memory.
type AddressRangeError struct {
	Index int64
	Limit int64
}

func (e *AddressRangeError) Error() string {
	return fmt.Sprintf("address %d above limit %d", e.Index, e.Limit)
}
