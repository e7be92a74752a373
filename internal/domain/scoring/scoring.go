// Package scoring computes public and private scores for validated
// submissions against the gold-label set.
package scoring

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stadio-ml/stadio/internal/domain/dataset"
	"github.com/stadio-ml/stadio/internal/domain/submission"
)

// Scores holds the two scores computed for one submission.
type Scores struct {
	Public  float64
	Private float64
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithMetric sets the metric used for both partitions.
func WithMetric(spec Spec) Option {
	return func(s *Scorer) {
		if spec.Fn != nil {
			s.metric = spec
		}
	}
}

// Scorer evaluates submissions over the public and private partitions of
// the gold set. The public partition is visibility {1,2}, the private
// partition {0,2}; rows flagged 2 count in both views.
type Scorer struct {
	gold   *dataset.GoldLabelSet
	metric Spec
}

// New creates a Scorer for a gold set. The metric defaults to accuracy.
func New(gold *dataset.GoldLabelSet, opts ...Option) *Scorer {
	s := &Scorer{
		gold:   gold,
		metric: Spec{Name: "Accuracy", Fn: Accuracy, ToMaximize: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metric returns the configured metric spec.
func (s *Scorer) Metric() Spec { return s.metric }

// Score computes the public and private scores for a validated submission.
// Both sides of each partition are re-sorted by id before pairing, so the
// result is invariant to upload row order.
//
// Inputs are assumed already validated; any failure here is ErrScoring.
func (s *Scorer) Score(ctx context.Context, f *submission.File) (Scores, error) {
	if err := ctx.Err(); err != nil {
		return Scores{}, fmt.Errorf("%w: %w", ErrScoring, err)
	}

	values := make(map[string]string, f.Len())
	for _, row := range f.Rows() {
		values[row.ID] = row.Value
	}

	public, err := s.scorePartition(s.gold.PublicRows(), values)
	if err != nil {
		return Scores{}, err
	}
	private, err := s.scorePartition(s.gold.PrivateRows(), values)
	if err != nil {
		return Scores{}, err
	}
	return Scores{Public: public, Private: private}, nil
}

// scorePartition aligns predictions to gold rows by id and applies the
// metric. The gold rows arrive sorted by id already.
func (s *Scorer) scorePartition(rows []dataset.Row, values map[string]string) (float64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: empty partition", ErrScoring)
	}

	truth := make([]float64, len(rows))
	pred := make([]float64, len(rows))
	for i, row := range rows {
		raw, ok := values[row.ID]
		if !ok {
			return 0, fmt.Errorf("%w: id %q absent from validated submission", ErrScoring, row.ID)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: non-numeric prediction %q for id %q", ErrScoring, raw, row.ID)
		}
		truth[i] = row.Target
		pred[i] = v
	}
	return s.metric.Fn(truth, pred), nil
}
