package delim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/stage"
)

func TestEncoder_FirstMessageIsVerbatim(t *testing.T) {
	enc := NewEncoder([]byte(","))
	emitted, remainder, err := enc.Push(stage.StateActive, []byte("a"))
	require.NoError(t, err)
	assert.Nil(t, remainder)
	assert.Equal(t, []byte("a"), emitted)

	emitted, _, err = enc.Push(stage.StateActive, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte(",b"), emitted)
}

func TestDecoder_SplitsOnDelimiter(t *testing.T) {
	dec := NewDecoder([]byte(","))
	emitted, remainder, err := dec.Push(stage.StateActive, []byte("a,bc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), emitted)
	assert.Equal(t, []byte("bc"), remainder)
}

func TestDecoder_BuffersUntilDelimiterArrives(t *testing.T) {
	dec := NewDecoder([]byte(","))
	emitted, remainder, err := dec.Push(stage.StateActive, []byte("partial"))
	require.NoError(t, err)
	assert.Nil(t, emitted)
	assert.Equal(t, []byte("partial"), remainder)
}

func TestDecoder_FlushesFinalMessageWithoutTrailingDelimiter(t *testing.T) {
	dec := NewDecoder([]byte(","))
	emitted, remainder, err := dec.Push(stage.StateEnd, []byte("tail"))
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), emitted)
	assert.Nil(t, remainder)
}

func TestLinesRegistration_FixedToNewline(t *testing.T) {
	enc := NewEncoder([]byte("\n"))
	first, _, err := enc.Push(stage.StateActive, []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), first)

	second, _, err := enc.Push(stage.StateActive, []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\ntwo"), second)
}
