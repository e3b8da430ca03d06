package length

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/stage"
)

func TestEncoder_PrependsHeader(t *testing.T) {
	enc := encoder{}
	emitted, remainder, err := enc.Push(stage.StateActive, []byte("hi"))
	require.NoError(t, err)
	assert.Nil(t, remainder)
	assert.Equal(t, Encode([]byte("hi")), emitted)
}

func TestDecoder_WaitsForFullFrame(t *testing.T) {
	dec := decoder{}
	framed := Encode([]byte("hello"))

	emitted, remainder, err := dec.Push(stage.StateActive, framed[:3])
	require.NoError(t, err)
	assert.Nil(t, emitted)
	assert.Equal(t, framed[:3], remainder)

	emitted, remainder, err = dec.Push(stage.StateActive, framed)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), emitted)
	assert.Empty(t, remainder)
}

func TestDecoder_LeavesTrailingBytesAsRemainder(t *testing.T) {
	dec := decoder{}
	framed := append(Encode([]byte("a")), []byte("extra")...)

	emitted, remainder, err := dec.Push(stage.StateActive, framed)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), emitted)
	assert.Equal(t, []byte("extra"), remainder)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	msg := []byte("round trip payload")
	decoded, rest, err := Decode(Encode(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
	assert.Empty(t, rest)
}

func TestDecode_TooShortIsError(t *testing.T) {
	_, _, err := Decode([]byte{1, 2})
	assert.Error(t, err)
}
