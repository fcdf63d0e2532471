package series

import "errors"

var (
	// ErrEmptySeries is returned when an operation needs at least one observation
	ErrEmptySeries = errors.New("series is empty")

	// ErrNoOverlap is returned when two series share no dates
	ErrNoOverlap = errors.New("series have no overlapping dates")
)
