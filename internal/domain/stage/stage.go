// Package stage implements the competition lifecycle state machine. Stage
// is a pure function of wall-clock time and three configured instants; no
// transitions are stored anywhere.
package stage

import (
	"fmt"
	"time"
)

// TimeLayout is the fixed textual format for configured instants (UTC).
const TimeLayout = "2006/01/02 15:04:05"

// Stage is one of the four lifecycle states.
type Stage int

// Lifecycle states in order. The four intervals are contiguous and
// non-overlapping over all of time.
const (
	Ready Stage = iota
	Open
	Closed
	Terminated
)

// String returns the stage tag used in logs and dump file names.
func (s Stage) String() string {
	switch s {
	case Ready:
		return "ready"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Clock holds the three ordered competition instants.
type Clock struct {
	open      time.Time
	close     time.Time
	terminate time.Time
}

// ParseClock builds a Clock from the configured textual instants. Times
// are interpreted as UTC.
func ParseClock(openStr, closeStr, terminateStr string) (*Clock, error) {
	open, err := time.ParseInLocation(TimeLayout, openStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: open_time %q: %w", ErrClockParse, openStr, err)
	}
	closeT, err := time.ParseInLocation(TimeLayout, closeStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: close_time %q: %w", ErrClockParse, closeStr, err)
	}
	terminate, err := time.ParseInLocation(TimeLayout, terminateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: terminate_time %q: %w", ErrClockParse, terminateStr, err)
	}
	return NewClock(open, closeT, terminate)
}

// NewClock validates open <= close <= terminate and returns the clock.
func NewClock(open, closeT, terminate time.Time) (*Clock, error) {
	if open.After(closeT) || closeT.After(terminate) {
		return nil, fmt.Errorf("%w: open=%v close=%v terminate=%v",
			ErrClockOrder, open, closeT, terminate)
	}
	return &Clock{open: open, close: closeT, terminate: terminate}, nil
}

// OpenTime returns the configured open instant.
func (c *Clock) OpenTime() time.Time { return c.open }

// CloseTime returns the configured close instant.
func (c *Clock) CloseTime() time.Time { return c.close }

// TerminateTime returns the configured terminate instant.
func (c *Clock) TerminateTime() time.Time { return c.terminate }

// StageAt returns the lifecycle stage at now. Each boundary instant
// belongs to the later stage.
func (c *Clock) StageAt(now time.Time) Stage {
	switch {
	case now.Before(c.open):
		return Ready
	case now.Before(c.close):
		return Open
	case now.Before(c.terminate):
		return Closed
	default:
		return Terminated
	}
}

// CanSubmitAt reports whether uploads are accepted at now. Submissions stay
// open through the CLOSED window: late uploads are still scored, they just
// never count toward the private leaderboard.
func (c *Clock) CanSubmitAt(now time.Time) bool {
	s := c.StageAt(now)
	return s == Open || s == Closed
}
