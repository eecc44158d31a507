package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	p, i, r := ModePosition, ModeImmediate, ModeRelative
	tests := []struct {
		name string
		cell int64
		want Instruction
	}{
		{name: "add", cell: 1, want: Instruction{Operation: OpAdd}},
		{name: "mul imm second", cell: 1002, want: Instruction{Operation: OpMultiply, Modes: [3]ParameterMode{p, i, p}}},
		{name: "add imm imm", cell: 1101, want: Instruction{Operation: OpAdd, Modes: [3]ParameterMode{i, i, p}}},
		{name: "add relative dst", cell: 21101, want: Instruction{Operation: OpAdd, Modes: [3]ParameterMode{i, i, r}}},
		{name: "output relative", cell: 204, want: Instruction{Operation: OpOutput, Modes: [3]ParameterMode{r, p, p}}},
		{name: "arb immediate", cell: 109, want: Instruction{Operation: OpAdjustRelativeBase, Modes: [3]ParameterMode{i, p, p}}},
		{name: "input", cell: 3, want: Instruction{Operation: OpInput}},
		{name: "jump if true", cell: 1105, want: Instruction{Operation: OpJumpIfTrue, Modes: [3]ParameterMode{i, i, p}}},
		{name: "jump if false", cell: 6, want: Instruction{Operation: OpJumpIfFalse}},
		{name: "less than", cell: 7, want: Instruction{Operation: OpLessThan}},
		{name: "equals", cell: 1108, want: Instruction{Operation: OpEquals, Modes: [3]ParameterMode{i, i, p}}},
		{name: "halt", cell: 99, want: Instruction{Operation: OpHalt}},
		{name: "zero", cell: 0, want: Instruction{Operation: OpUnknown}},
		{name: "bad selector", cell: 5050, want: Instruction{Operation: OpUnknown}},
		{name: "selector 98", cell: 98, want: Instruction{Operation: OpUnknown}},
		{name: "mode digit 3", cell: 304, want: Instruction{Operation: OpUnknown}},
		{name: "bad third mode", cell: 90001, want: Instruction{Operation: OpUnknown}},
		{name: "leftover mode digits", cell: 1111101, want: Instruction{Operation: OpUnknown}},
		{name: "negative", cell: -1, want: Instruction{Operation: OpUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.cell))
		})
	}
}

func TestOperation_ParametersCount(t *testing.T) {
	want := map[Operation]int{
		OpAdd:                3,
		OpMultiply:           3,
		OpLessThan:           3,
		OpEquals:             3,
		OpJumpIfTrue:         2,
		OpJumpIfFalse:        2,
		OpInput:              1,
		OpOutput:             1,
		OpAdjustRelativeBase: 1,
		OpHalt:               0,
		OpUnknown:            0,
	}
	for op, n := range want {
		assert.Equal(t, n, op.ParametersCount(), op.String())
		assert.Equal(t, n+1, Instruction{Operation: op}.Width(), op.String())
	}
}

func TestInstruction_String(t *testing.T) {
	assert.Equal(t, "mul[position immediate position]", Decode(1002).String())
	assert.Equal(t, "halt", Decode(99).String())
	assert.Equal(t, "out[relative]", Decode(204).String())
}
