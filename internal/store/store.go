package store

import (
	"context"
	"errors"

	"github.com/anirudhbagri/textsense/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrJobFinalized is returned when a terminal transition is attempted on a
// job that already reached completed or failed. A job transitions exactly
// once; the guard keeps a late worker from overwriting the first outcome.
var ErrJobFinalized = errors.New("job already finalized")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	CompleteJob(ctx context.Context, id uuid.UUID, result *models.AnalysisResult) error
	FailJob(ctx context.Context, id uuid.UUID, message string) error
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, userID string) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// JobFilter selects a page of one owner's jobs, most recent first.
// Search is a case-insensitive substring match on the job text.
type JobFilter struct {
	OwnerID string
	Search  string
	Page    int
	Limit   int
}
