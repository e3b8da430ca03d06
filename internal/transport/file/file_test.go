package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

func TestSource_ReadsOnceThenEndOfTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	st, err := newStage(0, path)
	require.NoError(t, err)
	src := st.(*source)

	data, err := src.Pull()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = src.Pull()
	assert.ErrorIs(t, err, perr.ErrEndOfTransport)
}

func TestSink_AppendsAcrossPushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	st, err := newStage(1, path)
	require.NoError(t, err)
	snk := st.(*sink)

	_, _, err = snk.Push(stage.StateActive, []byte("ab"))
	require.NoError(t, err)
	_, _, err = snk.Push(stage.StateActive, []byte("cd"))
	require.NoError(t, err)
	require.NoError(t, snk.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(got))
}

func TestNewStage_RequiresPathOption(t *testing.T) {
	_, err := newStage(0, "")
	assert.Error(t, err)
}
