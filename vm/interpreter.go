package vm

import (
	"fmt"

	"github.com/krehermann/intcode/types"
	"go.uber.org/zap"
)

// Interpreter wraps a VM in a suspend/resume state machine. Callers feed
// input a little at a time with RunWithInput and collect output between
// calls. Output accumulates until drained.
//
// An Interpreter is not safe for concurrent use. Use Clone to get an
// independent copy.
type Interpreter struct {
	vm     *VM
	state  State
	err    error
	input  *types.List[int64]
	output *types.List[int64]

	// 0 leaves memory unbounded
	addressLimit int64

	logger *zap.Logger
}

type InterpreterOpt func(*Interpreter) *Interpreter

func WithLogger(l *zap.Logger) InterpreterOpt {
	return func(i *Interpreter) *Interpreter {
		i.logger = l
		return i
	}
}

// WithAddressLimit caps the addresses the program may write. Writes above
// limit fail the interpreter with AddressRangeError.
func WithAddressLimit(limit int64) InterpreterOpt {
	return func(i *Interpreter) *Interpreter {
		i.addressLimit = limit
		return i
	}
}

func NewInterpreter(code []int64, opts ...InterpreterOpt) *Interpreter {
	i := &Interpreter{
		state:  StateInitial,
		input:  types.NewList[int64](),
		output: types.NewList[int64](),
		logger: zap.L(),
	}
	for _, opt := range opts {
		i = opt(i)
	}

	i.vm = NewVM(code, LoggerOpt(i.logger), AddressLimitOpt(i.addressLimit))
	i.logger = i.logger.Named("interpreter")

	return i
}

// Run resumes the program without new input.
func (i *Interpreter) Run() {
	i.RunWithInput()
}

// RunWithInput queues values behind any input left over from earlier calls
// and runs until the program halts, faults, or needs input that is not
// queued. It does nothing once the interpreter is Halted or Failed.
func (i *Interpreter) RunWithInput(values ...int64) {
	if i.state.Terminal() {
		return
	}

	i.input.Append(values...)

	prev := i.state
	cause, err := i.vm.RunWithIO(i.input, i.output)
	switch {
	case err != nil:
		i.fail(err)
	case cause == StopHalted:
		i.state = StateHalted
	default:
		i.state = StateWaitingForInput
	}

	i.logger.Debug("run",
		zap.Stringer("from", prev),
		zap.Stringer("to", i.state),
		zap.Int("queued input", i.input.Len()),
		zap.Int("output", i.output.Len()),
	)
}

func (i *Interpreter) fail(err error) {
	i.state = StateFailed
	i.err = err
	i.logger.Warn("program failed",
		zap.Int64("ip", i.vm.IP()),
		zap.Error(err))
}

func (i *Interpreter) State() State {
	return i.state
}

// Err is the fault that moved the interpreter to StateFailed, or nil.
func (i *Interpreter) Err() error {
	return i.err
}

func (i *Interpreter) failure() error {
	if i.state == StateFailed {
		return fmt.Errorf("interpreter failed: %w", i.err)
	}
	return nil
}

// Code returns a copy of the machine memory.
func (i *Interpreter) Code() ([]int64, error) {
	if err := i.failure(); err != nil {
		return nil, err
	}
	return i.vm.Code(), nil
}

// Output returns a copy of the undrained output.
func (i *Interpreter) Output() ([]int64, error) {
	if err := i.failure(); err != nil {
		return nil, err
	}
	return i.output.Slice(), nil
}

// DrainOutput returns the undrained output and empties the buffer.
func (i *Interpreter) DrainOutput() ([]int64, error) {
	if err := i.failure(); err != nil {
		return nil, err
	}
	return i.output.Drain(), nil
}

// IntoOutput hands the output buffer to the caller and releases the
// machine. Every later call reports ErrConsumed.
func (i *Interpreter) IntoOutput() ([]int64, error) {
	if err := i.failure(); err != nil {
		return nil, err
	}
	out := i.output.Drain()

	i.vm = NewVM(nil, LoggerOpt(zap.NewNop()))
	i.input.Clear()
	i.state = StateFailed
	i.err = ErrConsumed

	return out, nil
}

// Steps is the number of instructions executed so far.
func (i *Interpreter) Steps() uint64 {
	return i.vm.Steps()
}

// QueuedInput is the number of input values not yet consumed.
func (i *Interpreter) QueuedInput() int {
	return i.input.Len()
}

// Clone returns an independent interpreter with the same memory,
// registers, queued input, undrained output and state.
func (i *Interpreter) Clone() *Interpreter {
	return &Interpreter{
		vm:     i.vm.Clone(),
		state:  i.state,
		err:    i.err,
		input:  i.input.Clone(),
		output: i.output.Clone(),

		addressLimit: i.addressLimit,
		logger:       i.logger,
	}
}
