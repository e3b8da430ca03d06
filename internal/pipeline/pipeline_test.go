package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/stage"
)

type fakeSource struct{}

func (fakeSource) Pull() ([]byte, error) { return nil, nil }

type fakeSink struct{}

func (fakeSink) Push(stage.State, []byte) ([]byte, []byte, error) { return nil, nil, nil }

type closingSink struct {
	fakeSink
	closed bool
	err    error
}

func (c *closingSink) Close() error {
	c.closed = true
	return c.err
}

func TestNew_RejectsFewerThanTwoStages(t *testing.T) {
	_, err := New([]stage.Stage{fakeSource{}})
	assert.Error(t, err)
}

func TestNew_RejectsSourceNotPuller(t *testing.T) {
	_, err := New([]stage.Stage{fakeSink{}, fakeSink{}})
	assert.Error(t, err)
}

func TestNew_RejectsNonPusherStage(t *testing.T) {
	_, err := New([]stage.Stage{fakeSource{}, fakeSource{}})
	assert.Error(t, err)
}

func TestClose_ClosesEveryCloserAndKeepsFirstError(t *testing.T) {
	first := &closingSink{err: errors.New("first failure")}
	second := &closingSink{err: errors.New("second failure")}
	p, err := New([]stage.Stage{fakeSource{}, first, second})
	require.NoError(t, err)

	err = p.Close()
	assert.EqualError(t, err, "first failure")
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestAt_ReturnsThePusherAtPosition(t *testing.T) {
	sink := &closingSink{}
	p, err := New([]stage.Stage{fakeSource{}, sink})
	require.NoError(t, err)
	assert.Same(t, stage.Pusher(sink), p.At(1))
}
