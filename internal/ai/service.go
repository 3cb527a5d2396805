package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/anirudhbagri/textsense/internal/cache"
	"github.com/anirudhbagri/textsense/internal/config"
	"github.com/anirudhbagri/textsense/internal/store"
	"github.com/anirudhbagri/textsense/internal/worker"
	"github.com/anirudhbagri/textsense/pkg/models"
	"github.com/google/uuid"
)

const statusCacheTTL = 30 * time.Minute

// Dispatcher hands analysis tasks to the background worker pool.
type Dispatcher interface {
	Enqueue(task worker.Task) bool
}

// AnalysisService owns the job lifecycle: validation and creation on the
// request path, and the retrying provider call plus the terminal status
// transition in the background.
type AnalysisService struct {
	store    store.Store
	cache    cache.Cache
	provider models.TextAnalyzer
	pool     Dispatcher
	cfg      config.AIConfig
	maxText  int

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(st store.Store, ca cache.Cache, provider models.TextAnalyzer, pool Dispatcher, aiCfg config.AIConfig, maxTextLength int) *AnalysisService {
	return &AnalysisService{
		store:    st,
		cache:    ca,
		provider: provider,
		pool:     pool,
		cfg:      aiCfg,
		maxText:  maxTextLength,
		sleep:    time.Sleep,
	}
}

// Submit validates the request, durably creates a pending job, and hands the
// analysis to the worker pool. It returns as soon as the job record exists;
// the provider is never called on this path.
func (s *AnalysisService) Submit(ctx context.Context, ownerID, text, mode string) (*models.Job, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > s.maxText {
		return nil, fmt.Errorf("%w: maximum is %d characters", ErrTextTooLong, s.maxText)
	}
	if mode == "" {
		mode = models.ModeSimple
	}
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	job := &models.Job{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Text:      text,
		Mode:      mode,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	_ = s.cache.SetJobStatus(ctx, job.ID, models.JobStatusPending, statusCacheTTL)

	// The job is durable at this point, so an observer holding the id will
	// always find a record even if the pool rejects the task.
	if !s.pool.Enqueue(worker.Task{JobID: job.ID, OwnerID: ownerID, Text: text, Mode: mode}) {
		slog.Warn("worker pool rejected task, failing job", "job_id", job.ID)
		s.finalizeFailed(context.Background(), job.ID, "analysis could not be scheduled")
	}

	return job, nil
}

// Process runs one job to its terminal state. It is invoked by the worker
// pool exactly once per job.
func (s *AnalysisService) Process(ctx context.Context, task worker.Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during analysis", "error", r, "job_id", task.JobID)
			s.finalizeFailed(context.Background(), task.JobID, "internal error during analysis")
		}
	}()

	result, err := s.analyze(ctx, task)
	if err != nil {
		slog.Warn("analysis failed", "job_id", task.JobID, "error", err)
		s.finalizeFailed(context.Background(), task.JobID, failureMessage(err, s.cfg.MaxAttempts))
		return
	}

	s.finalizeCompleted(context.Background(), task.JobID, &result)
}

// analyze calls the provider with bounded retry. Transient failures back off
// and retry up to MaxAttempts total calls; permanent failures return
// immediately. A response violating the structural contract counts as a
// permanent parse failure.
func (s *AnalysisService) analyze(ctx context.Context, task worker.Task) (models.AnalysisResult, error) {
	req := models.AnalysisRequest{Text: task.Text, Mode: task.Mode}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.InferenceTimeout)
		result, err := s.provider.Analyze(attemptCtx, req)
		cancel()

		if err == nil {
			if verr := result.Validate(); verr != nil {
				return models.AnalysisResult{}, fmt.Errorf("%w: %v", models.ErrInvalidResponse, verr)
			}
			return result, nil
		}

		if !isTransient(err) {
			return models.AnalysisResult{}, err
		}

		lastErr = err
		if attempt < s.cfg.MaxAttempts {
			delay := backoff(s.cfg.BackoffBase, attempt,
				errors.Is(err, models.ErrRateLimited), s.cfg.RateLimitBackoffMultiple)
			slog.Debug("retrying analysis", "job_id", task.JobID,
				"attempt", attempt, "delay", delay, "error", err)
			s.sleep(delay)
		}
	}

	return models.AnalysisResult{}, fmt.Errorf("exhausted %d attempts: %w", s.cfg.MaxAttempts, lastErr)
}

// finalizeCompleted applies the terminal completed transition exactly once.
// A missing or already-finalized job is logged and swallowed; the analysis is
// never re-run because the store update failed.
func (s *AnalysisService) finalizeCompleted(ctx context.Context, jobID uuid.UUID, result *models.AnalysisResult) {
	if err := s.store.CompleteJob(ctx, jobID, result); err != nil {
		logFinalizeAnomaly("complete", jobID, err)
		return
	}
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusCompleted, statusCacheTTL)
	slog.Info("job completed", "job_id", jobID)
}

func (s *AnalysisService) finalizeFailed(ctx context.Context, jobID uuid.UUID, message string) {
	if err := s.store.FailJob(ctx, jobID, message); err != nil {
		logFinalizeAnomaly("fail", jobID, err)
		return
	}
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, statusCacheTTL)
	slog.Info("job failed", "job_id", jobID, "reason", message)
}

func logFinalizeAnomaly(op string, jobID uuid.UUID, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		slog.Warn("job deleted before terminal update", "op", op, "job_id", jobID)
	case errors.Is(err, store.ErrJobFinalized):
		slog.Warn("job already finalized", "op", op, "job_id", jobID)
	default:
		slog.Error("terminal update failed", "op", op, "job_id", jobID, "error", err)
	}
}

// failureMessage summarizes a failure class for the stored job record.
// The message is user-facing: no credentials, no stack traces, no raw
// provider payloads.
func failureMessage(err error, attempts int) string {
	switch {
	case errors.Is(err, models.ErrRateLimited):
		return fmt.Sprintf("rate limit exceeded after %d attempts", attempts)
	case errors.Is(err, models.ErrProviderUnavailable):
		return fmt.Sprintf("connection to analysis provider failed after %d attempts", attempts)
	case errors.Is(err, models.ErrInferenceTimeout):
		return fmt.Sprintf("analysis timed out after %d attempts", attempts)
	case errors.Is(err, models.ErrInvalidResponse):
		return "provider returned an unparseable response"
	default:
		return "analysis failed due to an internal error"
	}
}

// GetJob fetches a job by id, enforcing ownership.
func (s *AnalysisService) GetJob(ctx context.Context, id uuid.UUID, callerID string) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != callerID {
		return nil, ErrAccessDenied
	}
	return job, nil
}

// ListJobs returns a page of ownerID's jobs, newest first, plus the filtered
// total. Only the owner may list their jobs.
func (s *AnalysisService) ListJobs(ctx context.Context, ownerID, callerID string, page, limit int, search string) ([]*models.Job, int, error) {
	if ownerID != callerID {
		return nil, 0, ErrAccessDenied
	}
	return s.store.ListJobs(ctx, store.JobFilter{
		OwnerID: ownerID,
		Search:  search,
		Page:    page,
		Limit:   limit,
	})
}

// DeleteJob permanently removes a job after an ownership check. Deleting a
// job whose analysis is still in flight is allowed; the worker's terminal
// update then misses and is swallowed.
func (s *AnalysisService) DeleteJob(ctx context.Context, id uuid.UUID, callerID string) error {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.OwnerID != callerID {
		return ErrAccessDenied
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	_ = s.cache.DeleteJobStatus(ctx, id)
	return nil
}
