package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEmptyProgram = errors.New("empty program")

// Program is a machine image: the initial memory contents.
type Program []int64

// ParseProgram reads the comma separated decimal form, e.g. "1,0,0,0,99".
// Whitespace around values and a trailing newline are ignored.
func ParseProgram(text string) (Program, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyProgram
	}

	fields := strings.Split(text, ",")
	p := make(Program, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse program: cell %d: %w", i, err)
		}
		p = append(p, v)
	}
	return p, nil
}

func (p Program) String() string {
	var sb strings.Builder
	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}

func (p Program) Clone() Program {
	out := make(Program, len(p))
	copy(out, p)
	return out
}
