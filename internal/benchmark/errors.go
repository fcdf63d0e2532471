package benchmark

import "errors"

var (
	// ErrUnknownProvider is returned for an unsupported provider name
	ErrUnknownProvider = errors.New("unknown benchmark provider")

	// ErrNoData is returned when a provider has no closes for the request
	ErrNoData = errors.New("benchmark returned no data")
)
