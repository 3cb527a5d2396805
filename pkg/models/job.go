// Package models contains shared data models used across the textsense codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Analysis modes. Simple uses a cheaper model with literal instructions;
// deep uses a more capable model with richer analysis instructions.
const (
	ModeSimple = "simple"
	ModeDeep   = "deep"
)

// ValidMode reports whether mode is a recognized analysis mode.
func ValidMode(mode string) bool {
	return mode == ModeSimple || mode == ModeDeep
}

// Job tracks an async text-analysis request. The API returns a job_id on
// POST /api/v1/analyze; the client polls GET /api/v1/analyze/{job_id} until
// status is completed or failed. A job transitions at most once, from pending
// to exactly one terminal state: Result is set iff completed, ErrorMessage
// iff failed.
type Job struct {
	ID           uuid.UUID       `db:"id"            json:"id"`
	OwnerID      string          `db:"owner_id"      json:"owner_id"`
	Text         string          `db:"text"          json:"text"`
	Mode         string          `db:"mode"          json:"mode"`
	Status       string          `db:"status"        json:"status"`
	Result       *AnalysisResult `db:"result"        json:"result,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at"  json:"completed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at"    json:"created_at"`
}
