// Package app orchestrates the competition: it drives uploads through
// gating, validation, storage, scoring and the ledger, and exposes the
// leaderboard and history views the transport layer serves.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stadio-ml/stadio/internal/adapters/repository"
	"github.com/stadio-ml/stadio/internal/adapters/storage"
	"github.com/stadio-ml/stadio/internal/domain/dataset"
	"github.com/stadio-ml/stadio/internal/domain/gate"
	"github.com/stadio-ml/stadio/internal/domain/inflight"
	"github.com/stadio-ml/stadio/internal/domain/rank"
	"github.com/stadio-ml/stadio/internal/domain/scoring"
	"github.com/stadio-ml/stadio/internal/domain/stage"
	"github.com/stadio-ml/stadio/internal/domain/submission"
	"github.com/stadio-ml/stadio/pkg/logger"
	"github.com/stadio-ml/stadio/pkg/metrics"
)

// Receipt is returned for an accepted, scored submission. Private scores
// are never part of it.
type Receipt struct {
	SubmissionID uint      `json:"submission_id"`
	Timestamp    time.Time `json:"timestamp"`
	PublicScore  float64   `json:"public_score"`
	Metric       string    `json:"metric"`
}

// HistoryEntry is one row of a user's submission history. Private scores
// stay hidden; only the selection flag is shown.
type HistoryEntry struct {
	SubmissionID uint      `json:"submission_id"`
	Timestamp    time.Time `json:"timestamp"`
	PublicScore  float64   `json:"public_score"`
	PrivateCheck bool      `json:"private_check"`
}

// StageInfo describes the competition window and its current stage.
type StageInfo struct {
	Stage         string    `json:"stage"`
	OpenTime      time.Time `json:"open_time"`
	CloseTime     time.Time `json:"close_time"`
	TerminateTime time.Time `json:"terminate_time"`
	CanSubmit     bool      `json:"can_submit"`
}

// Stats is a coarse operational snapshot.
type Stats struct {
	Stage            string `json:"stage"`
	TotalSubmissions int64  `json:"total_submissions"`
	InFlight         int64  `json:"in_flight"`
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithTracker overrides the in-flight tracker.
func WithTracker(t inflight.Tracker) Option {
	return func(s *Service) {
		s.tracker = t
	}
}

// WithNow overrides the time source. Tests use it to move the clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service wires the domain together behind a transport-agnostic API.
type Service struct {
	gold    *dataset.GoldLabelSet
	scorer  *scoring.Scorer
	ledger  repository.Ledger
	guard   *gate.Guard
	clock   *stage.Clock
	files   storage.Store
	ranker  *rank.Builder
	tracker inflight.Tracker
	log     logger.Logger
	now     func() time.Time
}

// New assembles the service. The ranker inherits the scorer's metric
// polarity and the clock's close time.
func New(gold *dataset.GoldLabelSet, scorer *scoring.Scorer, ledger repository.Ledger,
	guard *gate.Guard, clock *stage.Clock, files storage.Store, opts ...Option) *Service {
	s := &Service{
		gold:    gold,
		scorer:  scorer,
		ledger:  ledger,
		guard:   guard,
		clock:   clock,
		files:   files,
		ranker:  rank.NewBuilder(ledger, scorer.Metric().ToMaximize, clock.CloseTime()),
		tracker: inflight.NewInMemoryTracker(),
		log:     logger.Named("app"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit drives one upload through the full pipeline: serialization,
// stage gate, validation, storage, ledger insert with the rate guard in
// transaction, scoring and evaluation append. The first failed step wins;
// nothing is written to the ledger for a rejected upload.
func (s *Service) Submit(ctx context.Context, userID, filename string, payload []byte) (*Receipt, error) {
	if !s.tracker.Acquire(ctx, userID) {
		metrics.RecordSubmissionRejected("busy")
		return nil, ErrBusy
	}
	defer s.tracker.Release(ctx, userID)

	now := s.now()
	if err := s.guard.CheckStage(userID, now); err != nil {
		metrics.RecordSubmissionRejected("stage")
		return nil, err
	}
	if err := submission.CheckExtension(filename); err != nil {
		metrics.RecordSubmissionRejected("extension")
		return nil, err
	}
	file, err := submission.Parse(bytes.NewReader(payload))
	if err != nil {
		metrics.RecordSubmissionRejected("parse")
		return nil, err
	}
	if err := submission.Validate(file, s.gold); err != nil {
		metrics.RecordSubmissionRejected("schema")
		return nil, err
	}

	ref, err := s.files.Save(userID, payload)
	if err != nil {
		metrics.RecordInternalError("storage")
		return nil, err
	}

	sub, err := s.ledger.AddSubmission(ctx, userID, now, ref, s.guard.SubmissionGuard(userID, now))
	if err != nil {
		// The upload was never ledgered; do not leave it in the archive.
		if rmErr := s.files.Remove(ref); rmErr != nil {
			s.log.Warn(ctx, "rejected upload left in storage",
				logger.String("ref", ref), logger.Error(rmErr))
		}
		s.rejectRate(err)
		return nil, err
	}

	start := time.Now()
	scores, err := s.scorer.Score(ctx, file)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordInternalError("scoring")
		s.log.Error(ctx, "scoring failed after validation",
			logger.Uint("submission_id", sub.ID),
			logger.Error(err))
		return nil, err
	}
	if _, err := s.ledger.AddEvaluation(ctx, sub.ID, scores.Public, scores.Private, s.now()); err != nil {
		metrics.RecordInternalError("ledger")
		return nil, err
	}

	metrics.RecordSubmissionAccepted()
	metrics.RecordEvaluation()
	s.log.Info(ctx, "submission scored",
		logger.String("user_id", userID),
		logger.Uint("submission_id", sub.ID),
		logger.Float64("public_score", scores.Public))
	return &Receipt{
		SubmissionID: sub.ID,
		Timestamp:    sub.Timestamp,
		PublicScore:  scores.Public,
		Metric:       s.scorer.Metric().Name,
	}, nil
}

// rejectRate classifies a failed ledger insert for metrics. Guard errors
// are user-facing; anything else is an internal ledger failure.
func (s *Service) rejectRate(err error) {
	switch {
	case errors.Is(err, gate.ErrCooldownActive):
		metrics.RecordSubmissionRejected("cooldown")
	case errors.Is(err, gate.ErrQuotaExceeded):
		metrics.RecordSubmissionRejected("quota")
	default:
		metrics.RecordInternalError("ledger")
	}
}

// SelectPrivate applies a batch of private-check toggles for the user.
// Selections stay open until the competition terminates; privileged
// identities may adjust them at any time.
func (s *Service) SelectPrivate(ctx context.Context, userID string, checks map[uint]bool) error {
	if len(checks) == 0 {
		return nil
	}
	if !s.guard.IsPrivileged(userID) && s.clock.StageAt(s.now()) == stage.Terminated {
		return ErrSelectionClosed
	}
	return s.ledger.SetPrivateChecks(ctx, userID, checks)
}

// PublicLeaderboard returns the public ranking, visible at every stage.
func (s *Service) PublicLeaderboard(ctx context.Context) ([]rank.Entry, error) {
	entries, err := s.ranker.Public(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateLeaderboardUsers("public", len(entries))
	return entries, nil
}

// PrivateLeaderboard returns the private ranking. It is hidden from
// regular users until the competition terminates.
func (s *Service) PrivateLeaderboard(ctx context.Context, userID string) ([]rank.Entry, error) {
	if !s.guard.IsPrivileged(userID) && s.clock.StageAt(s.now()) != stage.Terminated {
		return nil, ErrPrivateHidden
	}
	entries, err := s.ranker.Private(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateLeaderboardUsers("private", len(entries))
	return entries, nil
}

// History returns the user's evaluated submissions, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	rows, err := s.ledger.EvaluationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			SubmissionID: row.SubmissionID,
			Timestamp:    row.Timestamp,
			PublicScore:  row.PublicScore,
			PrivateCheck: row.PrivateCheck,
		})
	}
	return entries, nil
}

// StageNow describes the current stage and the competition window.
func (s *Service) StageNow() StageInfo {
	now := s.now()
	return StageInfo{
		Stage:         s.clock.StageAt(now).String(),
		OpenTime:      s.clock.OpenTime(),
		CloseTime:     s.clock.CloseTime(),
		TerminateTime: s.clock.TerminateTime(),
		CanSubmit:     s.clock.CanSubmitAt(now),
	}
}

// GetStats returns a coarse operational snapshot.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.ledger.TotalSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting submissions: %w", err)
	}
	return &Stats{
		Stage:            s.clock.StageAt(s.now()).String(),
		TotalSubmissions: total,
		InFlight:         s.tracker.Size(),
	}, nil
}
