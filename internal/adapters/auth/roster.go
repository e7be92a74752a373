// Package auth resolves opaque API keys to user identities. The core never
// sees raw credentials beyond this boundary.
package auth

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Roster column names. The roster is a TSV exported from the course
// management system; extra columns are tolerated and ignored.
const (
	userColumn = "student_id"
	keyColumn  = "private_key"
)

// Resolver maps API keys to user identities.
type Resolver interface {
	// Resolve returns the user id owning apiKey, or ErrInvalidKey.
	Resolve(apiKey string) (string, error)
}

// RosterResolver implements Resolver over a roster file loaded at startup.
type RosterResolver struct {
	byKey  map[string]string
	byUser map[string]string
}

// LoadRoster reads and indexes the roster TSV at path.
func LoadRoster(path string) (*RosterResolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterParse, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a tab-separated roster with a header row containing at least
// student_id and private_key columns.
func Load(r io.Reader) (*RosterResolver, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty roster", ErrRosterSchema)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	userIdx, hasUser := cols[userColumn]
	keyIdx, hasKey := cols[keyColumn]
	if !hasUser || !hasKey {
		return nil, fmt.Errorf("%w: need columns %q and %q, got %v",
			ErrRosterSchema, userColumn, keyColumn, records[0])
	}

	res := &RosterResolver{
		byKey:  make(map[string]string, len(records)-1),
		byUser: make(map[string]string, len(records)-1),
	}
	for _, rec := range records[1:] {
		userID, key := rec[userIdx], rec[keyIdx]
		if userID == "" || key == "" {
			return nil, fmt.Errorf("%w: blank student_id or private_key", ErrRosterSchema)
		}
		if _, dup := res.byKey[key]; dup {
			return nil, fmt.Errorf("%w: duplicate private_key", ErrRosterSchema)
		}
		if _, dup := res.byUser[userID]; dup {
			return nil, fmt.Errorf("%w: duplicate student_id %q", ErrRosterSchema, userID)
		}
		res.byKey[key] = userID
		res.byUser[userID] = key
	}
	return res, nil
}

// Resolve returns the user id owning apiKey.
func (r *RosterResolver) Resolve(apiKey string) (string, error) {
	userID, ok := r.byKey[apiKey]
	if !ok {
		return "", ErrInvalidKey
	}
	return userID, nil
}

// IsValidUser reports whether userID appears in the roster.
func (r *RosterResolver) IsValidUser(userID string) bool {
	_, ok := r.byUser[userID]
	return ok
}

// Len returns the number of roster entries.
func (r *RosterResolver) Len() int { return len(r.byKey) }
