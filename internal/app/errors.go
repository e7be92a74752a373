package app

import "errors"

// Sentinel kinds for orchestration errors.
var (
	// ErrBusy rejects an upload while the same user's previous upload is
	// still being validated and scored.
	ErrBusy = errors.New("previous submission still processing")

	// ErrPrivateHidden hides the private leaderboard until the
	// competition has terminated.
	ErrPrivateHidden = errors.New("private leaderboard not yet visible")

	// ErrSelectionClosed rejects private-check changes once the
	// competition has terminated.
	ErrSelectionClosed = errors.New("selections are frozen")
)
