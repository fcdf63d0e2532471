package plot

import "errors"

var (
	// ErrUnknownBackend is returned by New for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown chart backend")

	// ErrTooFewPoints is returned when a chart has nothing to draw
	ErrTooFewPoints = errors.New("not enough points to draw a chart")
)
