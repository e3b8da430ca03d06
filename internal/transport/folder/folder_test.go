package folder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

func TestSource_IteratesFilesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first"), 0o644))

	st, err := newStage(0, dir)
	require.NoError(t, err)
	src := st.(*source)

	first, err := src.Pull()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), first)

	second, err := src.Pull()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), second)

	_, err = src.Pull()
	assert.ErrorIs(t, err, perr.ErrEndOfTransport)
}

func TestSink_WritesOneFilePerPushWithMonotonicSuffix(t *testing.T) {
	dir := t.TempDir()
	st, err := newStage(1, dir)
	require.NoError(t, err)
	snk := st.(*sink)

	_, _, err = snk.Push(stage.StateActive, []byte("one"))
	require.NoError(t, err)
	_, _, err = snk.Push(stage.StateActive, []byte("two"))
	require.NoError(t, err)

	got1, err := os.ReadFile(filepath.Join(dir, "000001"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(got1))

	got2, err := os.ReadFile(filepath.Join(dir, "000002"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(got2))
}

func TestSink_UUIDOptionUsesUniqueNames(t *testing.T) {
	dir := t.TempDir()
	st, err := newStage(1, dir+":id")
	require.NoError(t, err)
	snk := st.(*sink)

	_, _, err = snk.Push(stage.StateActive, []byte("x"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Name(), 36)
}
