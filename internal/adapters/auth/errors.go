package auth

import "errors"

// Sentinel kinds for credential resolution errors.
var (
	// ErrInvalidKey reports an API key that maps to no known identity.
	ErrInvalidKey = errors.New("invalid api key")

	// ErrRosterParse and ErrRosterSchema are fatal at startup.
	ErrRosterParse  = errors.New("roster parse failed")
	ErrRosterSchema = errors.New("roster schema invalid")
)
