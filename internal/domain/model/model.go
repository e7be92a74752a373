// Package model contains domain models passed between layers.
package model

import "time"

// Submission is one accepted upload. Rows are append-only: a submission is
// created once, never mutated and never deleted during normal operation.
type Submission struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"size:32;not null;index" json:"user_id"`
	Timestamp  time.Time `gorm:"not null" json:"timestamp"`
	StorageRef string    `gorm:"size:128;not null" json:"storage_ref"`
}

// TableName pins the sqlite table name.
func (Submission) TableName() string { return "submission" }

// Evaluation holds the scores computed for a submission. At most one
// evaluation exists per submission. PrivateCheck is the only mutable field:
// it marks a submission as selected for the private leaderboard.
type Evaluation struct {
	SubmissionID uint      `gorm:"primaryKey" json:"submission_id"`
	PublicScore  float64   `gorm:"not null" json:"public_score"`
	PrivateScore float64   `gorm:"not null" json:"private_score"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	PrivateCheck bool      `gorm:"not null;default:false" json:"private_check"`
}

// TableName pins the sqlite table name.
func (Evaluation) TableName() string { return "evaluation" }

// EvaluatedSubmission joins a submission with its evaluation for ledger
// queries and leaderboard computation.
type EvaluatedSubmission struct {
	SubmissionID uint      `json:"submission_id"`
	UserID       string    `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
	PublicScore  float64   `json:"public_score"`
	PrivateScore float64   `json:"private_score"`
	PrivateCheck bool      `json:"private_check"`
}
