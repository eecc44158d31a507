package vm

// Memory is the machine tape. Reads past the end return zero without
// allocating; writes past the end grow the tape, zero filling the gap.
type Memory struct {
	cells []int64
	// highest writable address, 0 for no limit
	limit int64
}

type MemoryOpt func(*Memory) *Memory

// AddressLimit caps the addresses a program may write. Writes above limit
// fail with AddressRangeError instead of growing the tape. Memory is
// unbounded unless this is set.
func AddressLimit(limit int64) MemoryOpt {
	return func(m *Memory) *Memory {
		m.limit = limit
		return m
	}
}

// NewMemory copies code into a fresh tape.
func NewMemory(code []int64, opts ...MemoryOpt) *Memory {
	cells := make([]int64, len(code))
	copy(cells, code)
	m := &Memory{
		cells: cells,
	}
	for _, opt := range opts {
		m = opt(m)
	}
	return m
}

func (m *Memory) Read(addr int64) (int64, error) {
	if addr < 0 {
		return 0, &NegativeIndexError{Index: addr}
	}
	if addr >= int64(len(m.cells)) {
		return 0, nil
	}
	return m.cells[addr], nil
}

func (m *Memory) Write(addr int64, value int64) error {
	if addr < 0 {
		return &NegativeIndexError{Index: addr}
	}
	if m.limit > 0 && addr > m.limit {
		return &AddressRangeError{Index: addr, Limit: m.limit}
	}
	if addr >= int64(len(m.cells)) {
		m.grow(int(addr) + 1)
	}
	m.cells[addr] = value
	return nil
}

func (m *Memory) grow(n int) {
	if n <= cap(m.cells) {
		// cells past len may hold stale values from an earlier slice
		old := len(m.cells)
		m.cells = m.cells[:n]
		clear(m.cells[old:])
		return
	}
	grown := make([]int64, n, max(n, 2*cap(m.cells)))
	copy(grown, m.cells)
	m.cells = grown
}

func (m *Memory) Len() int {
	return len(m.cells)
}

// Cells returns a copy of the tape.
func (m *Memory) Cells() []int64 {
	out := make([]int64, len(m.cells))
	copy(out, m.cells)
	return out
}

func (m *Memory) Clone() *Memory {
	return NewMemory(m.cells, AddressLimit(m.limit))
}

// slice returns cells [from, from+n) without copying, or false if they are
// not all within the tape.
func (m *Memory) slice(from int64, n int) ([]int64, bool) {
	if from < 0 || from+int64(n) > int64(len(m.cells)) {
		return nil, false
	}
	return m.cells[from : from+int64(n)], true
}
