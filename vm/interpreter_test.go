package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestInterpreter(code []int64) *Interpreter {
	return NewInterpreter(code, WithLogger(zap.NewNop()))
}

func TestInterpreter_States(t *testing.T) {
	// in, out, in, out, halt; the input cell sits past the program end
	code := []int64{3, 9, 4, 9, 3, 9, 4, 9, 99}
	i := newTestInterpreter(code)
	assert.Equal(t, StateInitial, i.State())
	assert.NoError(t, i.Err())

	i.Run()
	assert.Equal(t, StateWaitingForInput, i.State())
	out, err := i.Output()
	require.NoError(t, err)
	assert.Empty(t, out)

	i.RunWithInput(5)
	assert.Equal(t, StateWaitingForInput, i.State())
	out, err = i.Output()
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, out)
	// the first input ran exactly once: input, output and no more
	assert.Equal(t, uint64(2), i.Steps())

	i.RunWithInput(7)
	assert.Equal(t, StateHalted, i.State())
	out, err = i.Output()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, out)

	mem, err := i.Code()
	require.NoError(t, err)
	assert.Equal(t, append(append([]int64{}, code...), 7), mem)

	// halted is absorbing
	i.RunWithInput(1)
	assert.Equal(t, StateHalted, i.State())
	assert.Equal(t, 0, i.QueuedInput())
}

func TestInterpreter_QueuedInput(t *testing.T) {
	code := []int64{3, 9, 4, 9, 3, 9, 4, 9, 99}

	// input supplied up front is consumed by later input instructions
	i := newTestInterpreter(code)
	i.RunWithInput(1, 2, 3)
	assert.Equal(t, StateHalted, i.State())
	out, err := i.Output()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, out)
	assert.Equal(t, 1, i.QueuedInput())

	// input left from a previous call comes before new input
	i = newTestInterpreter([]int64{3, 20, 3, 21, 3, 22, 4, 20, 4, 21, 4, 22, 99})
	i.RunWithInput(1)
	assert.Equal(t, StateWaitingForInput, i.State())
	i.RunWithInput(2, 3)
	assert.Equal(t, StateHalted, i.State())
	out, err = i.Output()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, out)
}

func TestInterpreter_DrainOutput(t *testing.T) {
	// out 1, in, out 2, halt
	i := newTestInterpreter([]int64{104, 1, 3, 7, 104, 2, 99})
	i.Run()
	require.Equal(t, StateWaitingForInput, i.State())

	drained, err := i.DrainOutput()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, drained)

	out, err := i.Output()
	require.NoError(t, err)
	assert.Empty(t, out)

	i.RunWithInput(0)
	require.Equal(t, StateHalted, i.State())
	drained, err = i.DrainOutput()
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, drained)

	drained, err = i.DrainOutput()
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestInterpreter_FailedIsAbsorbing(t *testing.T) {
	i := newTestInterpreter([]int64{104, 3, 1101, 1, 1, 7, 5050})
	i.Run()
	require.Equal(t, StateFailed, i.State())

	var uoe *UnknownOpcodeError
	require.True(t, errors.As(i.Err(), &uoe))
	assert.Equal(t, int64(5050), uoe.Opcode)
	assert.Equal(t, int64(6), uoe.Index)
	first := i.Err()
	steps := i.Steps()

	for n := 0; n < 3; n++ {
		i.RunWithInput(1, 2)
		assert.Equal(t, StateFailed, i.State())
		assert.Same(t, first, i.Err())
		assert.Equal(t, steps, i.Steps())

		_, err := i.Code()
		assert.True(t, errors.As(err, &uoe))
		_, err = i.Output()
		assert.True(t, errors.As(err, &uoe))
		_, err = i.DrainOutput()
		assert.True(t, errors.As(err, &uoe))
		_, err = i.IntoOutput()
		assert.True(t, errors.As(err, &uoe))
	}
}

func TestInterpreter_IntoOutput(t *testing.T) {
	i := newTestInterpreter([]int64{104, 1, 104, 2, 99})
	i.Run()
	require.Equal(t, StateHalted, i.State())

	out, err := i.IntoOutput()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, out)

	assert.Equal(t, StateFailed, i.State())
	assert.ErrorIs(t, i.Err(), ErrConsumed)
	_, err = i.Output()
	assert.ErrorIs(t, err, ErrConsumed)
}

func TestInterpreter_CloneIndependence(t *testing.T) {
	// store input at 10, output it doubled, halt
	code := []int64{3, 10, 1002, 10, 2, 10, 4, 10, 99}
	base := newTestInterpreter(code)
	base.Run()
	require.Equal(t, StateWaitingForInput, base.State())

	fork := base.Clone()
	fork.RunWithInput(21)
	require.Equal(t, StateHalted, fork.State())

	// base is untouched by the fork's run
	assert.Equal(t, StateWaitingForInput, base.State())
	mem, err := base.Code()
	require.NoError(t, err)
	assert.Equal(t, code, mem)

	base.RunWithInput(4)
	require.Equal(t, StateHalted, base.State())

	baseOut, err := base.Output()
	require.NoError(t, err)
	forkOut, err := fork.Output()
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, baseOut)
	assert.Equal(t, []int64{42}, forkOut)
}

func TestInterpreter_CloneCarriesOutput(t *testing.T) {
	i := newTestInterpreter([]int64{104, 9, 3, 20, 99})
	i.Run()

	c := i.Clone()
	drained, err := c.DrainOutput()
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, drained)

	out, err := i.Output()
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, out)
}

func TestInterpreter_PatchedReplay(t *testing.T) {
	source := newTestInterpreter([]int64{1, 0, 0, 0, 99})
	code, err := source.Code()
	require.NoError(t, err)

	code[1], code[2] = 4, 4
	patched := newTestInterpreter(code)
	patched.Run()
	source.Run()

	got, err := patched.Code()
	require.NoError(t, err)
	assert.Equal(t, []int64{198, 4, 4, 0, 99}, got)

	got, err = source.Code()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0, 0, 0, 99}, got)
}

func TestInterpreter_AddressLimit(t *testing.T) {
	// in, then write the input to cell 50
	code := []int64{3, 50, 99}

	i := NewInterpreter(code, WithLogger(zap.NewNop()), WithAddressLimit(49))
	i.RunWithInput(1)
	require.Equal(t, StateFailed, i.State())
	var are *AddressRangeError
	assert.True(t, errors.As(i.Err(), &are))

	// a clone taken before the write fails the same way
	i = NewInterpreter(code, WithLogger(zap.NewNop()), WithAddressLimit(49))
	i.Run()
	c := i.Clone()
	c.RunWithInput(1)
	assert.Equal(t, StateFailed, c.State())

	i = newTestInterpreter(code)
	i.RunWithInput(1)
	assert.Equal(t, StateHalted, i.State())
}
