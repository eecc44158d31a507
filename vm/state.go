package vm

// State is the Interpreter's position in its run cycle. Halted and Failed
// are terminal.
type State int

const (
	// StateInitial: not run yet.
	StateInitial State = iota
	// StateWaitingForInput: suspended on an input instruction.
	StateWaitingForInput
	// StateHalted: the program executed halt.
	StateHalted
	// StateFailed: the program faulted, see Interpreter.Err.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateWaitingForInput:
		return "waiting_for_input"
	case StateHalted:
		return "halted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether further runs are no-ops.
func (s State) Terminal() bool {
	return s == StateHalted || s == StateFailed
}
