package perr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal_UnclassifiedErrorCountsAsFatal(t *testing.T) {
	assert.True(t, IsFatal(errors.New("boom")))
}

func TestIsFatal_ClassifiedNonFatalIsNotFatal(t *testing.T) {
	err := WrapInvalidData(errors.New("bad frame"), "codec", "Push", "parse")
	assert.False(t, IsFatal(err))
	assert.True(t, IsInvalidData(err))
}

func TestAsFatal_PassesThroughEndOfTransport(t *testing.T) {
	got := AsFatal(ErrEndOfTransport, "c", "o", "a")
	assert.ErrorIs(t, got, ErrEndOfTransport)
}

func TestAsFatal_PassesThroughAlreadyClassified(t *testing.T) {
	original := WrapInvalidOption(errors.New("bad opt"), "c", "o", "a")
	got := AsFatal(original, "engine", "Run", "pull")
	assert.Same(t, original, got)
	assert.True(t, IsInvalidOption(got))
}

func TestAsFatal_CoercesUnclassifiedToFatal(t *testing.T) {
	got := AsFatal(errors.New("mystery"), "engine", "Run", "pull")
	assert.True(t, IsFatal(got))
	assert.Contains(t, got.Error(), "engine.Run: pull failed")
}

func TestClassified_UnwrapExposesUnderlyingError(t *testing.T) {
	inner := errors.New("root cause")
	wrapped := WrapFatal(inner, "c", "o", "a")
	assert.ErrorIs(t, wrapped, inner)
}
