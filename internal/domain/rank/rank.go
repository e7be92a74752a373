// Package rank derives public and private leaderboards from the submission
// ledger.
package rank

import (
	"context"
	"sort"
	"time"

	"github.com/stadio-ml/stadio/internal/domain/model"
)

// Reader is the slice of the ledger the builder needs.
type Reader interface {
	AllEvaluated(ctx context.Context) ([]model.EvaluatedSubmission, error)
}

// Entry is one leaderboard row.
type Entry struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"user_id"`
	Score        float64 `json:"score"`
	SubmissionID uint    `json:"submission_id"`
}

// Builder computes rankings on demand. It never filters identities itself;
// admin and baseline appear unless the caller excludes them.
type Builder struct {
	reader     Reader
	toMaximize bool
	closeTime  time.Time
}

// NewBuilder creates a Builder. toMaximize is the metric polarity and
// closeTime bounds private-leaderboard eligibility.
func NewBuilder(reader Reader, toMaximize bool, closeTime time.Time) *Builder {
	return &Builder{reader: reader, toMaximize: toMaximize, closeTime: closeTime}
}

// better reports whether a beats b under the configured polarity.
func (b *Builder) better(a, bv float64) bool {
	if b.toMaximize {
		return a > bv
	}
	return a < bv
}

// Public returns the public leaderboard: each user's best public score,
// sorted best first. Ties keep a stable, unspecified order.
func (b *Builder) Public(ctx context.Context) ([]Entry, error) {
	rows, err := b.reader.AllEvaluated(ctx)
	if err != nil {
		return nil, err
	}

	best := make(map[string]Entry)
	order := make([]string, 0)
	for _, row := range rows {
		cur, seen := best[row.UserID]
		if !seen {
			order = append(order, row.UserID)
		}
		if !seen || b.better(row.PublicScore, cur.Score) {
			best[row.UserID] = Entry{
				UserID:       row.UserID,
				Score:        row.PublicScore,
				SubmissionID: row.SubmissionID,
			}
		}
	}
	return b.ranked(best, order), nil
}

// Private returns the private leaderboard. Only submissions made before
// close_time are eligible. A user with checked selections is ranked by the
// best private score among them; a user with none checked falls back to
// the private score paired with their best public submission.
func (b *Builder) Private(ctx context.Context) ([]Entry, error) {
	rows, err := b.reader.AllEvaluated(ctx)
	if err != nil {
		return nil, err
	}

	type userRows struct {
		checked    []model.EvaluatedSubmission
		bestPublic model.EvaluatedSubmission
		hasRows    bool
	}
	byUser := make(map[string]*userRows)
	order := make([]string, 0)
	for _, row := range rows {
		if !row.Timestamp.Before(b.closeTime) {
			continue
		}
		u, seen := byUser[row.UserID]
		if !seen {
			u = &userRows{}
			byUser[row.UserID] = u
			order = append(order, row.UserID)
		}
		if row.PrivateCheck {
			u.checked = append(u.checked, row)
		}
		if !u.hasRows || b.better(row.PublicScore, u.bestPublic.PublicScore) {
			u.bestPublic = row
			u.hasRows = true
		}
	}

	best := make(map[string]Entry, len(byUser))
	for userID, u := range byUser {
		var pick model.EvaluatedSubmission
		if len(u.checked) > 0 {
			pick = u.checked[0]
			for _, row := range u.checked[1:] {
				if b.better(row.PrivateScore, pick.PrivateScore) {
					pick = row
				}
			}
		} else {
			pick = u.bestPublic
		}
		best[userID] = Entry{
			UserID:       userID,
			Score:        pick.PrivateScore,
			SubmissionID: pick.SubmissionID,
		}
	}
	return b.ranked(best, order), nil
}

// ranked orders entries best first and assigns ranks. order carries the
// users' first-appearance sequence so equal scores keep a stable order.
func (b *Builder) ranked(best map[string]Entry, order []string) []Entry {
	entries := make([]Entry, 0, len(best))
	for _, userID := range order {
		entries = append(entries, best[userID])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return b.better(entries[i].Score, entries[j].Score)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
