package vm

import (
	"fmt"
	"math"

	"github.com/krehermann/intcode/types"
	"go.uber.org/zap"
)

// StopCause says why RunWithIO returned without an error.
type StopCause int

const (
	StopHalted StopCause = iota
	StopWaitingForInput
)

func (c StopCause) String() string {
	switch c {
	case StopHalted:
		return "halted"
	case StopWaitingForInput:
		return "waiting for input"
	default:
		return "unknown"
	}
}

// VM is the execution engine: memory, instruction pointer and relative
// base. It is not safe for concurrent use.
type VM struct {
	mem *Memory
	// instruction pointer
	ip           int64
	relativeBase int64
	// executed instructions, for diagnostics
	steps uint64

	logger *zap.Logger
}

type VMOpt func(*VM) *VM

func LoggerOpt(l *zap.Logger) VMOpt {
	return func(vm *VM) *VM {
		vm.logger = l
		return vm
	}
}

// AddressLimitOpt caps the addresses the program may write. See
// AddressLimit.
func AddressLimitOpt(limit int64) VMOpt {
	return func(vm *VM) *VM {
		vm.mem = AddressLimit(limit)(vm.mem)
		return vm
	}
}

func NewVM(code []int64, opts ...VMOpt) *VM {
	vm := &VM{
		mem:    NewMemory(code),
		logger: zap.L(),
	}

	for _, opt := range opts {
		vm = opt(vm)
	}

	vm.logger = vm.logger.Named("vm")

	return vm
}

// RunWithIO executes instructions until the program halts, an input
// instruction finds input empty, or a fault occurs. Input values are
// consumed from the front of input; output values are appended to output.
//
// On StopWaitingForInput the instruction pointer still addresses the input
// instruction, so the next call retries it.
func (vm *VM) RunWithIO(input, output *types.List[int64]) (StopCause, error) {
	if input == nil {
		input = types.NewList[int64]()
	}
	if output == nil {
		output = types.NewList[int64]()
	}

	for {
		stopped, cause, err := vm.step(input, output)
		if err != nil {
			vm.logger.Debug("fault",
				zap.Int64("ip", vm.ip),
				zap.Uint64("steps", vm.steps),
				zap.Error(err))
			return cause, err
		}
		if stopped {
			vm.logger.Debug("stopped",
				zap.Stringer("cause", cause),
				zap.Int64("ip", vm.ip),
				zap.Uint64("steps", vm.steps))
			return cause, nil
		}
	}
}

// step executes one instruction. stopped is true on halt and on input
// starvation.
func (vm *VM) step(input, output *types.List[int64]) (stopped bool, cause StopCause, err error) {
	cell, err := vm.mem.Read(vm.ip)
	if err != nil {
		return false, cause, fmt.Errorf("fetch at %d: %w", vm.ip, err)
	}
	inst := Decode(cell)

	if ce := vm.logger.Check(zap.DebugLevel, "exec"); ce != nil {
		ce.Write(
			zap.Int64("ip", vm.ip),
			zap.Int64("cell", cell),
			zap.Stringer("inst", inst),
			zap.Int64("rb", vm.relativeBase))
	}

	switch inst.Operation {
	case OpUnknown:
		return false, cause, &UnknownOpcodeError{Opcode: cell, Index: vm.ip}
	case OpHalt:
		vm.steps++
		return true, StopHalted, nil
	}

	raw, ok := vm.mem.slice(vm.ip+1, inst.Operation.ParametersCount())
	if !ok {
		return false, cause, fmt.Errorf("%s at %d: %w", inst.Operation, vm.ip, ErrPartialOpcode)
	}
	// raw aliases memory which the instruction may overwrite
	var args [maxParameters]int64
	copy(args[:], raw)

	p := params{vm: vm, inst: inst, args: args}
	next := vm.ip + int64(inst.Width())

	switch inst.Operation {
	case OpAdd, OpMultiply:
		a, b := p.read(0), p.read(1)
		var v int64
		if p.err == nil {
			v, err = vm.arith(inst.Operation, a, b)
			if err != nil {
				return false, cause, err
			}
		}
		p.write(2, v)

	case OpInput:
		// suspend before resolving the destination
		if input.Len() == 0 {
			return true, StopWaitingForInput, nil
		}
		dst := p.address(0)
		if p.err != nil {
			break
		}
		v, _ := input.PopFront()
		p.store(dst, v)

	case OpOutput:
		v := p.read(0)
		if p.err == nil {
			output.Append(v)
		}

	case OpJumpIfTrue, OpJumpIfFalse:
		// the target is only read when the jump is taken
		cond := p.read(0)
		if p.err == nil && (inst.Operation == OpJumpIfTrue) == (cond != 0) {
			next = p.read(1)
		}

	case OpLessThan:
		a, b := p.read(0), p.read(1)
		p.write(2, boolToInt(a < b))

	case OpEquals:
		a, b := p.read(0), p.read(1)
		p.write(2, boolToInt(a == b))

	case OpAdjustRelativeBase:
		v := p.read(0)
		if p.err == nil {
			rb, ok := addInt64(vm.relativeBase, v)
			if !ok {
				return false, cause, &OverflowError{Operation: inst.Operation, A: vm.relativeBase, B: v, Index: vm.ip}
			}
			vm.relativeBase = rb
		}
	}

	if p.err != nil {
		return false, cause, fmt.Errorf("%s at %d: %w", inst.Operation, vm.ip, p.err)
	}

	vm.steps++
	vm.ip = next
	return false, cause, nil
}

func (vm *VM) arith(op Operation, a, b int64) (int64, error) {
	var (
		v  int64
		ok bool
	)
	if op == OpAdd {
		v, ok = addInt64(a, b)
	} else {
		v, ok = mulInt64(a, b)
	}
	if !ok {
		return 0, &OverflowError{Operation: op, A: a, B: b, Index: vm.ip}
	}
	return v, nil
}

// params resolves the parameters of one instruction. The first error
// sticks; later calls are no-ops.
type params struct {
	vm   *VM
	inst Instruction
	args [maxParameters]int64
	err  error
}

func (p *params) read(i int) int64 {
	if p.err != nil {
		return 0
	}
	raw := p.args[i]
	var v int64
	switch p.inst.Modes[i] {
	case ModeImmediate:
		return raw
	case ModePosition:
		v, p.err = p.vm.mem.Read(raw)
	case ModeRelative:
		addr, ok := addInt64(p.vm.relativeBase, raw)
		if !ok {
			p.err = &OverflowError{Operation: p.inst.Operation, A: p.vm.relativeBase, B: raw, Index: p.vm.ip}
			return 0
		}
		v, p.err = p.vm.mem.Read(addr)
	}
	return v
}

func (p *params) address(i int) int64 {
	if p.err != nil {
		return 0
	}
	raw := p.args[i]
	switch p.inst.Modes[i] {
	case ModeImmediate:
		p.err = ErrWriteToConstant
	case ModeRelative:
		addr, ok := addInt64(p.vm.relativeBase, raw)
		if !ok {
			p.err = &OverflowError{Operation: p.inst.Operation, A: p.vm.relativeBase, B: raw, Index: p.vm.ip}
			return 0
		}
		return addr
	}
	return raw
}

func (p *params) store(addr, v int64) {
	if p.err != nil {
		return
	}
	p.err = p.vm.mem.Write(addr, v)
}

func (p *params) write(i int, v int64) {
	p.store(p.address(i), v)
}

// Code returns a copy of memory.
func (vm *VM) Code() []int64 {
	return vm.mem.Cells()
}

func (vm *VM) IP() int64 {
	return vm.ip
}

func (vm *VM) RelativeBase() int64 {
	return vm.relativeBase
}

// Steps is the number of instructions executed so far.
func (vm *VM) Steps() uint64 {
	return vm.steps
}

// Clone deep copies the machine. The logger is shared.
func (vm *VM) Clone() *VM {
	return &VM{
		mem:          vm.mem.Clone(),
		ip:           vm.ip,
		relativeBase: vm.relativeBase,
		steps:        vm.steps,
		logger:       vm.logger,
	}
}

// Result is the final state of a program run by Execute.
type Result struct {
	Code   []int64
	Output []int64
	Steps  uint64
}

// Execute runs code to completion with a fixed input. Unlike the
// Interpreter it does not suspend: running out of input is
// ErrInsufficientInput.
func Execute(code []int64, input ...int64) (*Result, error) {
	m := NewVM(code)
	out := types.NewList[int64]()

	cause, err := m.RunWithIO(types.NewList(input...), out)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	if cause == StopWaitingForInput {
		return nil, fmt.Errorf("execute: input at %d: %w", m.ip, ErrInsufficientInput)
	}

	return &Result{
		Code:   m.Code(),
		Output: out.Drain(),
		Steps:  m.steps,
	}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return 0, false
	}
	return s, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}
