package estimate

import "errors"

var (
	// ErrInsufficientData is returned when fewer than two observations are available
	ErrInsufficientData = errors.New("at least two observations are required")

	// ErrZeroVolatility is returned when the return series has no variance
	ErrZeroVolatility = errors.New("return series has zero standard deviation")
)
