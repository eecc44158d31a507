package types

// List is an ordered, growable buffer. The interpreter uses it for its
// input queue (consumed from the front) and its output buffer (appended to
// the back, drained in one pass).
type List[T any] struct {
	data []T
}

func NewList[T any](vals ...T) *List[T] {
	l := &List[T]{
		data: make([]T, 0, len(vals)),
	}
	l.data = append(l.data, vals...)
	return l
}

func (l *List[T]) Append(vals ...T) {
	l.data = append(l.data, vals...)
}

// PopFront removes and returns the first element. ok is false when the
// list is empty.
func (l *List[T]) PopFront() (val T, ok bool) {
	if len(l.data) == 0 {
		return val, false
	}
	val = l.data[0]
	l.data = l.data[1:]
	// let the backing array go once everything has been consumed
	if len(l.data) == 0 {
		l.data = nil
	}
	return val, true
}

// Slice returns a copy of the contents.
func (l *List[T]) Slice() []T {
	out := make([]T, len(l.data))
	copy(out, l.data)
	return out
}

// Drain returns the contents and empties the list.
func (l *List[T]) Drain() []T {
	out := l.data
	if out == nil {
		out = []T{}
	}
	l.data = nil
	return out
}

func (l *List[T]) Clone() *List[T] {
	return NewList(l.data...)
}

func (l *List[T]) Clear() {
	l.data = []T{}
}

func (l *List[T]) Len() int {
	return len(l.data)
}
