// Package repository defines the submission ledger interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/stadio-ml/stadio/internal/domain/model"
)

// MaxPrivateChecks caps how many submissions a user may select for the
// private leaderboard simultaneously.
const MaxPrivateChecks = 2

// Guard inspects a user's ledger state inside the submission insert
// transaction. latest is the zero time when the user has no prior
// submissions. Returning an error aborts the insert.
type Guard func(latest time.Time, count int64) error

// Ledger provides append-only access to submissions and their evaluations.
type Ledger interface {
	// AddSubmission appends a submission. When guard is non-nil it runs in
	// the same transaction as the insert, so cooldown and quota checks
	// cannot race a concurrent insert for the same user.
	AddSubmission(ctx context.Context, userID string, ts time.Time, storageRef string, guard Guard) (*model.Submission, error)

	// AddEvaluation appends the evaluation for a submission. At most one
	// evaluation per submission; a second attempt fails with
	// ErrDuplicateEvaluation.
	AddEvaluation(ctx context.Context, submissionID uint, publicScore, privateScore float64, at time.Time) (*model.Evaluation, error)

	// LatestSubmissionTime returns the timestamp of the user's most recent
	// submission. ok is false when the user has none.
	LatestSubmissionTime(ctx context.Context, userID string) (ts time.Time, ok bool, err error)

	// CountSubmissions returns the user's lifetime submission count.
	CountSubmissions(ctx context.Context, userID string) (int64, error)

	// CountEvaluated returns how many of the user's submissions have been
	// evaluated.
	CountEvaluated(ctx context.Context, userID string) (int64, error)

	// EvaluationsForUser returns the user's evaluated submissions, oldest
	// first.
	EvaluationsForUser(ctx context.Context, userID string) ([]model.EvaluatedSubmission, error)

	// AllEvaluated returns every evaluated submission, oldest first.
	AllEvaluated(ctx context.Context) ([]model.EvaluatedSubmission, error)

	// SetPrivateChecks applies a batch of private-check toggles for one
	// user, all-or-nothing. A batch that would leave the user with more
	// than MaxPrivateChecks selected fails with ErrTooManySelections and
	// changes nothing.
	SetPrivateChecks(ctx context.Context, userID string, checks map[uint]bool) error

	// TotalSubmissions returns the ledger-wide submission count.
	TotalSubmissions(ctx context.Context) (int64, error)

	// Dump writes one CSV per table into dir, named with the stage tag and
	// a UTC timestamp. It returns the written paths.
	Dump(ctx context.Context, dir, tag string) ([]string, error)

	// Close releases the underlying database handle.
	Close() error
}
