package scoring

import "errors"

// Sentinel kinds for scoring errors.
//
// ErrScoring is internal: inputs reaching the scorer have already
// passed schema validation, so a failure here indicates a logic bug and is
// logged loudly rather than shown to the user in detail.
var (
	ErrScoring       = errors.New("scoring failed on validated input")
	ErrUnknownMetric = errors.New("unknown metric")
)
