package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	// ErrNotFound reports a missing submission or one owned by another user.
	ErrNotFound = errors.New("submission not found")

	// ErrDuplicateEvaluation enforces the one-evaluation-per-submission
	// invariant at the ledger boundary.
	ErrDuplicateEvaluation = errors.New("evaluation already exists for submission")

	// ErrTooManySelections rejects a private-check batch that would leave a
	// user with more than the allowed number of selected submissions.
	ErrTooManySelections = errors.New("too many private selections")

	// ErrStore wraps underlying storage failures.
	ErrStore = errors.New("ledger store failed")
)
