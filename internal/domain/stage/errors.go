package stage

import "errors"

// Sentinel kinds for clock construction errors. Both are fatal
// configuration errors: the process must not start with a broken clock.
var (
	ErrClockParse = errors.New("competition time parse failed")
	ErrClockOrder = errors.New("competition dates order is wrong")
)
