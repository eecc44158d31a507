package vm

import (
	"fmt"
	"strings"
)

// NonASCIIError is returned by ASCIIOutput for a value outside 0..127.
type NonASCIIError struct {
	Value int64
	Index int
}

func (e *NonASCIIError) Error() string {
	return fmt.Sprintf("value %d at output index %d is not ascii", e.Value, e.Index)
}

// ASCIIInput encodes lines for programs that read text, one value per byte
// with a newline after every line.
func ASCIIInput(lines ...string) []int64 {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	out := make([]int64, 0, n)
	for _, l := range lines {
		for i := 0; i < len(l); i++ {
			out = append(out, int64(l[i]))
		}
		out = append(out, '\n')
	}
	return out
}

func isASCII(v int64) bool {
	return v >= 0 && v <= 127
}

// ASCIIOutput renders output values as text.
func ASCIIOutput(values []int64) (string, error) {
	var sb strings.Builder
	sb.Grow(len(values))
	for i, v := range values {
		if !isASCII(v) {
			return "", &NonASCIIError{Value: v, Index: i}
		}
		sb.WriteByte(byte(v))
	}
	return sb.String(), nil
}

// SplitASCIIOutput renders the leading run of ascii values and returns the
// values from the first non-ascii one onwards. Programs that draw a picture
// and then report a large number use this shape.
func SplitASCIIOutput(values []int64) (string, []int64) {
	end := len(values)
	for i, v := range values {
		if !isASCII(v) {
			end = i
			break
		}
	}
	text, _ := ASCIIOutput(values[:end])
	return text, values[end:]
}
