package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIIInput(t *testing.T) {
	assert.Equal(t, []int64{'A', ',', 'B', '\n', 'n', '\n'}, ASCIIInput("A,B", "n"))
	assert.Equal(t, []int64{'\n'}, ASCIIInput(""))
	assert.Empty(t, ASCIIInput())
}

func TestASCIIOutput(t *testing.T) {
	got, err := ASCIIOutput([]int64{'#', '.', '\n'})
	require.NoError(t, err)
	assert.Equal(t, "#.\n", got)

	_, err = ASCIIOutput([]int64{'#', 300})
	var nae *NonASCIIError
	require.True(t, errors.As(err, &nae))
	assert.Equal(t, int64(300), nae.Value)
	assert.Equal(t, 1, nae.Index)

	// bytes above 127 are not ascii
	_, err = ASCIIOutput([]int64{'a', 128})
	require.True(t, errors.As(err, &nae))
	assert.Equal(t, int64(128), nae.Value)

	text, rest := SplitASCIIOutput([]int64{'a', 200})
	assert.Equal(t, "a", text)
	assert.Equal(t, []int64{200}, rest)
}

func TestSplitASCIIOutput(t *testing.T) {
	text, rest := SplitASCIIOutput([]int64{'o', 'k', '\n', 1219070632396864, 'x'})
	assert.Equal(t, "ok\n", text)
	assert.Equal(t, []int64{1219070632396864, 'x'}, rest)

	text, rest = SplitASCIIOutput([]int64{'h', 'i'})
	assert.Equal(t, "hi", text)
	assert.Empty(t, rest)
}

func TestASCIIEcho(t *testing.T) {
	// echoes three input values back
	code := []int64{3, 20, 4, 20, 3, 20, 4, 20, 3, 20, 4, 20, 99}
	i := NewInterpreter(code)
	i.RunWithInput(ASCIIInput("hi")...)
	require.Equal(t, StateHalted, i.State())

	out, err := i.Output()
	require.NoError(t, err)
	text, err := ASCIIOutput(out)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", text)
}
