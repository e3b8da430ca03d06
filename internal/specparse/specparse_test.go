package specparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

func TestParse_SplitsNameAndOptions(t *testing.T) {
	tokens, err := Parse([]string{"-", "file:/tmp/out", "+delim:|"})
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, Token{Name: "-"}, tokens[0])
	assert.Equal(t, Token{Name: "file", Options: "/tmp/out"}, tokens[1])
	assert.Equal(t, Token{Name: "+delim", Options: "|"}, tokens[2])
}

func TestParse_EmptyArgsIsError(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestParse_EmptyTokenIsError(t *testing.T) {
	_, err := Parse([]string{"-", ""})
	assert.Error(t, err)
}

type fakeSource struct{}

func (fakeSource) Pull() ([]byte, error) { return nil, nil }

type fakeSink struct{}

func (fakeSink) Push(stage.State, []byte) ([]byte, []byte, error) { return nil, nil, nil }

func TestBuild_ConstructsPipelineInOrder(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Registration{
		Name:    "src",
		Factory: func(int, string) (stage.Stage, error) { return fakeSource{}, nil },
	}))
	require.NoError(t, reg.Register(registry.Registration{
		Name:    "snk",
		Factory: func(int, string) (stage.Stage, error) { return fakeSink{}, nil },
	}))

	p, err := Build([]Token{{Name: "src"}, {Name: "snk"}}, reg)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestBuild_UnknownStageErrorsWithPosition(t *testing.T) {
	reg := registry.New()
	_, err := Build([]Token{{Name: "nope"}, {Name: "nope2"}}, reg)
	assert.ErrorContains(t, err, "stage 0 (nope)")
}
