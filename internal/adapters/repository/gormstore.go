package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/stadio-ml/stadio/internal/domain/model"
	"github.com/stadio-ml/stadio/pkg/metrics"
)

// Timestamp format used in dump file names.
const dumpTimeLayout = "20060102150405"

// joinedSelect flattens a submission and its evaluation into one row.
const joinedSelect = "evaluation.submission_id, submission.user_id, submission.timestamp, " +
	"evaluation.public_score, evaluation.private_score, evaluation.private_check"

// GormStore implements Ledger on a sqlite database via gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the sqlite database at dsn and migrates the ledger
// tables.
func NewGormStore(ctx context.Context, dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", ErrStore, dsn, err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&model.Submission{}, &model.Evaluation{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", ErrStore, err)
	}
	return &GormStore{db: db}, nil
}

// AddSubmission appends a submission, running guard in the same transaction
// as the insert. Guard errors propagate unchanged so callers can match
// their own sentinel kinds.
func (s *GormStore) AddSubmission(ctx context.Context, userID string, ts time.Time, storageRef string, guard Guard) (*model.Submission, error) {
	sub := &model.Submission{UserID: userID, Timestamp: ts, StorageRef: storageRef}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if guard != nil {
			var latest model.Submission
			res := tx.Where("user_id = ?", userID).Order("timestamp DESC").Limit(1).Find(&latest)
			if res.Error != nil {
				return fmt.Errorf("%w: latest submission: %w", ErrStore, res.Error)
			}
			var count int64
			if err := tx.Model(&model.Submission{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return fmt.Errorf("%w: count submissions: %w", ErrStore, err)
			}
			if err := guard(latest.Timestamp, count); err != nil {
				return err
			}
		}
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("%w: insert submission: %w", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if total, terr := s.TotalSubmissions(ctx); terr == nil {
		metrics.UpdateLedgerSubmissions(total)
	}
	return sub, nil
}

// AddEvaluation appends the evaluation for a submission.
func (s *GormStore) AddEvaluation(ctx context.Context, submissionID uint, publicScore, privateScore float64, at time.Time) (*model.Evaluation, error) {
	eval := &model.Evaluation{
		SubmissionID: submissionID,
		PublicScore:  publicScore,
		PrivateScore: privateScore,
		CreatedAt:    at,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subCount int64
		if err := tx.Model(&model.Submission{}).Where("id = ?", submissionID).Count(&subCount).Error; err != nil {
			return fmt.Errorf("%w: lookup submission: %w", ErrStore, err)
		}
		if subCount == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, submissionID)
		}
		var evalCount int64
		if err := tx.Model(&model.Evaluation{}).Where("submission_id = ?", submissionID).Count(&evalCount).Error; err != nil {
			return fmt.Errorf("%w: lookup evaluation: %w", ErrStore, err)
		}
		if evalCount > 0 {
			return fmt.Errorf("%w: submission %d", ErrDuplicateEvaluation, submissionID)
		}
		if err := tx.Create(eval).Error; err != nil {
			return fmt.Errorf("%w: insert evaluation: %w", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return eval, nil
}

// LatestSubmissionTime returns the user's most recent submission timestamp.
func (s *GormStore) LatestSubmissionTime(ctx context.Context, userID string) (time.Time, bool, error) {
	var latest model.Submission
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).Order("timestamp DESC").Limit(1).Find(&latest)
	if res.Error != nil {
		return time.Time{}, false, fmt.Errorf("%w: latest submission: %w", ErrStore, res.Error)
	}
	if res.RowsAffected == 0 {
		return time.Time{}, false, nil
	}
	return latest.Timestamp, true, nil
}

// CountSubmissions returns the user's lifetime submission count.
func (s *GormStore) CountSubmissions(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Submission{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count submissions: %w", ErrStore, err)
	}
	return count, nil
}

// CountEvaluated returns how many of the user's submissions were evaluated.
func (s *GormStore) CountEvaluated(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Evaluation{}).
		Joins("JOIN submission ON submission.id = evaluation.submission_id").
		Where("submission.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count evaluated: %w", ErrStore, err)
	}
	return count, nil
}

// EvaluationsForUser returns the user's evaluated submissions, oldest first.
func (s *GormStore) EvaluationsForUser(ctx context.Context, userID string) ([]model.EvaluatedSubmission, error) {
	var rows []model.EvaluatedSubmission
	err := s.db.WithContext(ctx).Table("evaluation").
		Select(joinedSelect).
		Joins("JOIN submission ON submission.id = evaluation.submission_id").
		Where("submission.user_id = ?", userID).
		Order("evaluation.submission_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: evaluations for user: %w", ErrStore, err)
	}
	return rows, nil
}

// AllEvaluated returns every evaluated submission, oldest first.
func (s *GormStore) AllEvaluated(ctx context.Context) ([]model.EvaluatedSubmission, error) {
	var rows []model.EvaluatedSubmission
	err := s.db.WithContext(ctx).Table("evaluation").
		Select(joinedSelect).
		Joins("JOIN submission ON submission.id = evaluation.submission_id").
		Order("evaluation.submission_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: all evaluated: %w", ErrStore, err)
	}
	return rows, nil
}

// SetPrivateChecks applies a batch of private-check toggles for one user in
// a single transaction. The whole batch is rolled back when any toggle
// targets a foreign or unevaluated submission, or when the result would
// exceed MaxPrivateChecks selections.
func (s *GormStore) SetPrivateChecks(ctx context.Context, userID string, checks map[uint]bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, checked := range checks {
			var owned int64
			if err := tx.Model(&model.Submission{}).
				Where("id = ? AND user_id = ?", id, userID).Count(&owned).Error; err != nil {
				return fmt.Errorf("%w: lookup submission: %w", ErrStore, err)
			}
			if owned == 0 {
				return fmt.Errorf("%w: id %d", ErrNotFound, id)
			}
			res := tx.Model(&model.Evaluation{}).
				Where("submission_id = ?", id).Update("private_check", checked)
			if res.Error != nil {
				return fmt.Errorf("%w: update private_check: %w", ErrStore, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: no evaluation for submission %d", ErrNotFound, id)
			}
		}

		var selected int64
		err := tx.Model(&model.Evaluation{}).
			Joins("JOIN submission ON submission.id = evaluation.submission_id").
			Where("submission.user_id = ? AND evaluation.private_check = ?", userID, true).
			Count(&selected).Error
		if err != nil {
			return fmt.Errorf("%w: count selections: %w", ErrStore, err)
		}
		if selected > MaxPrivateChecks {
			return fmt.Errorf("%w: %d selected, max %d", ErrTooManySelections, selected, MaxPrivateChecks)
		}
		return nil
	})
}

// TotalSubmissions returns the ledger-wide submission count.
func (s *GormStore) TotalSubmissions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Submission{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: total submissions: %w", ErrStore, err)
	}
	return count, nil
}

// Dump writes one CSV per ledger table into dir, named with the stage tag
// and the current UTC timestamp.
func (s *GormStore) Dump(ctx context.Context, dir, tag string) ([]string, error) {
	ts := time.Now().UTC().Format(dumpTimeLayout)

	var subs []model.Submission
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("%w: dump submissions: %w", ErrStore, err)
	}
	var evals []model.Evaluation
	if err := s.db.WithContext(ctx).Order("submission_id ASC").Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("%w: dump evaluations: %w", ErrStore, err)
	}

	subPath := filepath.Join(dir, fmt.Sprintf("submission_%s_%s.csv", tag, ts))
	subHeader := []string{"id", "user_id", "timestamp", "storage_ref"}
	subRows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		subRows = append(subRows, []string{
			strconv.FormatUint(uint64(sub.ID), 10),
			sub.UserID,
			sub.Timestamp.UTC().Format(time.RFC3339),
			sub.StorageRef,
		})
	}
	if err := writeCSV(subPath, subHeader, subRows); err != nil {
		return nil, err
	}

	evalPath := filepath.Join(dir, fmt.Sprintf("evaluation_%s_%s.csv", tag, ts))
	evalHeader := []string{"submission_id", "public_score", "private_score", "created_at", "private_check"}
	evalRows := make([][]string, 0, len(evals))
	for _, eval := range evals {
		evalRows = append(evalRows, []string{
			strconv.FormatUint(uint64(eval.SubmissionID), 10),
			strconv.FormatFloat(eval.PublicScore, 'g', -1, 64),
			strconv.FormatFloat(eval.PrivateScore, 'g', -1, 64),
			eval.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(eval.PrivateCheck),
		})
	}
	if err := writeCSV(evalPath, evalHeader, evalRows); err != nil {
		return nil, err
	}

	return []string{subPath, evalPath}, nil
}

// Close releases the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %q: %w", ErrStore, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrStore, path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: write %q: %w", ErrStore, path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush %q: %w", ErrStore, path, err)
	}
	return nil
}

var _ Ledger = (*GormStore)(nil)
