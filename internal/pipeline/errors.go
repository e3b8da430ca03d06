package pipeline

import "errors"

var (
	errInsufficientStages = errors.New("pipeline requires at least two stages")
	errSourceNotPuller    = errors.New("stage at position 0 must implement Puller")
	errStageNotPusher     = errors.New("stage at position i>0 must implement Pusher")
)
