package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/krehermann/intcode/types"
	"github.com/krehermann/intcode/vm"
	"go.uber.org/zap"
)

// ErrMachineFailed is returned when reading from a failed machine.
var ErrMachineFailed = errors.New("machine failed")

type MachineID string

// Machine is one registered interpreter. The interpreter is not reentrant,
// so every access holds mu.
type Machine struct {
	mu      sync.Mutex
	id      MachineID
	program types.Hash
	interp  *vm.Interpreter
}

// Snapshot is a point in time view of a machine.
type Snapshot struct {
	ID          MachineID
	Program     types.Hash
	State       vm.State
	Err         error
	Steps       uint64
	QueuedInput int
	// undrained output, nil when the machine failed
	Output []int64
}

func (m *Machine) snapshot() Snapshot {
	out, _ := m.interp.Output()
	return Snapshot{
		ID:          m.id,
		Program:     m.program,
		State:       m.interp.State(),
		Err:         m.interp.Err(),
		Steps:       m.interp.Steps(),
		QueuedInput: m.interp.QueuedInput(),
		Output:      out,
	}
}

// Registry keeps program images by hash and the machines spawned from them.
type Registry struct {
	programs Storager[types.Hash, Program]
	machines Storager[MachineID, *Machine]
	hasher   Hasher[Program]
	nextID   atomic.Uint64

	// passed to every spawned interpreter, 0 for no limit
	addressLimit int64

	logger *zap.Logger
}

type RegistryOpt func(r *Registry) *Registry

func WithLogger(l *zap.Logger) RegistryOpt {
	return func(r *Registry) *Registry {
		r.logger = l
		return r
	}
}

// WithAddressLimit caps the memory addresses spawned machines may write.
func WithAddressLimit(limit int64) RegistryOpt {
	return func(r *Registry) *Registry {
		r.addressLimit = limit
		return r
	}
}

func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		programs: NewGenericMemStore[types.Hash, Program](),
		machines: NewGenericMemStore[MachineID, *Machine](),
		hasher:   DefaultProgramHasher{},
		logger:   zap.L(),
	}
	for _, opt := range opts {
		r = opt(r)
	}
	r.logger = r.logger.Named("registry")
	return r
}

// AddProgram stores p and returns its hash. Adding the same image twice is
// harmless.
func (r *Registry) AddProgram(p Program) (types.Hash, error) {
	if len(p) == 0 {
		return types.Hash{}, ErrEmptyProgram
	}
	h := r.hasher.Hash(p)
	if err := r.programs.Put(h, p.Clone()); err != nil {
		return h, fmt.Errorf("add program: %w", err)
	}
	r.logger.Info("added program",
		zap.String("hash", h.Prefix()),
		zap.Int("len", len(p)))
	return h, nil
}

// Program returns a copy of the stored image.
func (r *Registry) Program(h types.Hash) (Program, error) {
	p, err := r.programs.Get(h)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", h.Prefix(), err)
	}
	return p.Clone(), nil
}

func (r *Registry) newID() MachineID {
	return MachineID(fmt.Sprintf("m-%d", r.nextID.Add(1)))
}

func (r *Registry) register(program types.Hash, interp *vm.Interpreter) (Snapshot, error) {
	m := &Machine{
		id:      r.newID(),
		program: program,
		interp:  interp,
	}
	if err := r.machines.Put(m.id, m); err != nil {
		return Snapshot{}, err
	}
	return m.snapshot(), nil
}

// Spawn creates a machine in its initial state from a stored program.
func (r *Registry) Spawn(h types.Hash) (Snapshot, error) {
	p, err := r.programs.Get(h)
	if err != nil {
		return Snapshot{}, fmt.Errorf("spawn: program %s: %w", h.Prefix(), err)
	}
	interp := vm.NewInterpreter(p,
		vm.WithLogger(r.logger),
		vm.WithAddressLimit(r.addressLimit))
	snap, err := r.register(h, interp)
	if err != nil {
		return snap, fmt.Errorf("spawn: %w", err)
	}
	r.logger.Info("spawned machine",
		zap.String("id", string(snap.ID)),
		zap.String("program", h.Prefix()))
	return snap, nil
}

func (r *Registry) machine(id MachineID) (*Machine, error) {
	m, err := r.machines.Get(id)
	if err != nil {
		return nil, fmt.Errorf("machine %s: %w", id, err)
	}
	return m, nil
}

// Fork clones a machine, including its undrained output, under a new id.
func (r *Registry) Fork(id MachineID) (Snapshot, error) {
	m, err := r.machine(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	clone := m.interp.Clone()
	m.mu.Unlock()

	snap, err := r.register(m.program, clone)
	if err != nil {
		return snap, fmt.Errorf("fork %s: %w", id, err)
	}
	r.logger.Info("forked machine",
		zap.String("from", string(id)),
		zap.String("id", string(snap.ID)))
	return snap, nil
}

// Run feeds input to a machine and runs it until it halts, fails or waits
// for more input.
func (r *Registry) Run(id MachineID, input ...int64) (Snapshot, error) {
	m, err := r.machine(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interp.RunWithInput(input...)
	return m.snapshot(), nil
}

func (r *Registry) Snapshot(id MachineID) (Snapshot, error) {
	m, err := r.machine(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

// Drain returns and clears the undrained output of a machine.
func (r *Registry) Drain(id MachineID) ([]int64, error) {
	m, err := r.machine(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.interp.DrainOutput()
	if err != nil {
		return nil, fmt.Errorf("drain %s: %w: %w", id, ErrMachineFailed, err)
	}
	return out, nil
}

// Code returns the memory of a machine.
func (r *Registry) Code(id MachineID) ([]int64, error) {
	m, err := r.machine(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := m.interp.Code()
	if err != nil {
		return nil, fmt.Errorf("code %s: %w: %w", id, ErrMachineFailed, err)
	}
	return code, nil
}

func (r *Registry) Remove(id MachineID) error {
	if err := r.machines.Delete(id); err != nil {
		return fmt.Errorf("remove machine %s: %w", id, err)
	}
	r.logger.Info("removed machine", zap.String("id", string(id)))
	return nil
}

// Machines lists the ids of all registered machines.
func (r *Registry) Machines() ([]MachineID, error) {
	return r.machines.Keys()
}

// Close stops the backing stores.
func (r *Registry) Close() {
	for _, s := range []any{r.programs, r.machines} {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
