package report

import "errors"

// ErrBenchmarkDisabled is returned when a returns chart needs a benchmark
// that was switched off
var ErrBenchmarkDisabled = errors.New("benchmark disabled")
