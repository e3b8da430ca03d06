package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

type fakeStage struct{ tag string }

func fakeFactory(tag string) Factory {
	return func(int, string) (stage.Stage, error) { return fakeStage{tag: tag}, nil }
}

func TestRegister_DuplicateNameIsFatal(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Registration{Name: "x", Factory: fakeFactory("a")}))
	err := r.Register(Registration{Name: "x", Factory: fakeFactory("b")})
	assert.True(t, perr.IsFatal(err))
}

func TestBuild_UnknownNameIsInvalidOption(t *testing.T) {
	r := New()
	_, err := r.Build("nope", 0, "")
	assert.True(t, perr.IsInvalidOption(err))
}

func TestBuild_PassesPositionAndOptionsThrough(t *testing.T) {
	r := New()
	var gotPos int
	var gotOpts string
	require.NoError(t, r.Register(Registration{
		Name: "probe",
		Factory: func(position int, options string) (stage.Stage, error) {
			gotPos, gotOpts = position, options
			return fakeStage{}, nil
		},
	}))
	_, err := r.Build("probe", 3, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, gotPos)
	assert.Equal(t, "abc", gotOpts)
}
