// Package dump snapshots the submission ledger when the competition changes
// stage, producing the CSV exports graders work from.
package dump

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/stadio-ml/stadio/internal/adapters/repository"
	"github.com/stadio-ml/stadio/internal/domain/stage"
	"github.com/stadio-ml/stadio/pkg/logger"
	"github.com/stadio-ml/stadio/pkg/metrics"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// Scheduler arms one-shot ledger dumps at the close and terminate instants.
// Dumps fire at most once per stage transition for the process lifetime.
type Scheduler struct {
	ledger repository.Ledger
	clock  *stage.Clock
	dir    string
	log    logger.Logger
	timers []*time.Timer
}

// NewScheduler returns a scheduler writing dumps under dir. The directory
// is created here so a bad dump path dies at startup, not when the first
// timer fires.
func NewScheduler(ledger repository.Ledger, clock *stage.Clock, dir string, opts ...Option) (*Scheduler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDumpDir, dir, err)
	}
	s := &Scheduler{
		ledger: ledger,
		clock:  clock,
		dir:    dir,
		log:    logger.Named("dump"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start arms the timers. Transitions already in the past are skipped with a
// log line rather than fired retroactively.
func (s *Scheduler) Start(ctx context.Context) {
	now := time.Now().UTC()
	s.arm(ctx, now, s.clock.CloseTime(), stage.Closed)
	s.arm(ctx, now, s.clock.TerminateTime(), stage.Terminated)
}

// Stop cancels any timer that has not fired yet.
func (s *Scheduler) Stop() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Scheduler) arm(ctx context.Context, now, at time.Time, st stage.Stage) {
	delay := at.Sub(now)
	if delay < 0 {
		s.log.Info(ctx, "transition already past, dump skipped",
			logger.String("stage", st.String()),
			logger.Time("at", at))
		return
	}
	s.log.Info(ctx, "dump armed",
		logger.String("stage", st.String()),
		logger.Duration("in", delay))
	s.timers = append(s.timers, time.AfterFunc(delay, func() {
		s.run(ctx, st)
	}))
}

func (s *Scheduler) run(ctx context.Context, st stage.Stage) {
	files, err := s.ledger.Dump(ctx, s.dir, st.String())
	if err != nil {
		s.log.Error(ctx, "ledger dump failed",
			logger.String("stage", st.String()),
			logger.Error(err))
		metrics.RecordInternalError("dump")
		return
	}
	metrics.RecordDumpRun(st.String())
	s.log.Info(ctx, "ledger dumped",
		logger.String("stage", st.String()),
		logger.Any("files", files))
}
