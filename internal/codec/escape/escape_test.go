package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape_AllThreeSequences(t *testing.T) {
	got := Escape([]byte("a\\b\nc\rd"))
	assert.Equal(t, `a\\b\nc\rd`, string(got))
}

func TestUnescape_RoundTrip(t *testing.T) {
	in := []byte("a\\b\nc\rd")
	out, err := Unescape(Escape(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUnescape_TrailingBackslashIsError(t *testing.T) {
	_, err := Unescape([]byte(`abc\`))
	assert.ErrorIs(t, err, errTrailingBackslash)
}

func TestUnescape_UnknownEscapeIsError(t *testing.T) {
	_, err := Unescape([]byte(`a\qb`))
	assert.ErrorIs(t, err, errUnknownEscape)
}
