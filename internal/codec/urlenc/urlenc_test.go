package urlenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_SpacePercentEncodedNotPlus(t *testing.T) {
	got := Encode([]byte("a b&c"))
	assert.Equal(t, "a%20b%26c", string(got))
}

func TestDecode_RoundTrip(t *testing.T) {
	in := []byte("a b&c=d/e")
	decoded, err := Decode(Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in, decoded)
}

func TestDecode_LiteralPlusIsNotSpace(t *testing.T) {
	decoded, err := Decode([]byte("a+b"))
	require.NoError(t, err)
	assert.Equal(t, "a+b", string(decoded))
}
