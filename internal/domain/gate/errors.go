package gate

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for gating errors. All of them are expected and cheap:
// they are surfaced to the caller with enough detail to show a remaining
// wait or quota, and nothing is written to the ledger.
var (
	ErrNotOpen        = errors.New("competition is not accepting submissions")
	ErrCooldownActive = errors.New("cooldown active")
	ErrQuotaExceeded  = errors.New("submission quota exceeded")
)

// CooldownError carries the wait the user still has to sit out. It matches
// ErrCooldownActive under errors.Is.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: retry in %s", e.Remaining)
}

func (e *CooldownError) Unwrap() error { return ErrCooldownActive }
