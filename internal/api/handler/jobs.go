// Package handler contains the HTTP handlers for the textsense API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anirudhbagri/textsense/internal/ai"
	mw "github.com/anirudhbagri/textsense/internal/api/middleware"
	"github.com/anirudhbagri/textsense/internal/api/response"
	"github.com/anirudhbagri/textsense/internal/store"
	"github.com/anirudhbagri/textsense/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// JobService defines the interface the handlers depend on.
type JobService interface {
	Submit(ctx context.Context, ownerID, text, mode string) (*models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID, callerID string) (*models.Job, error)
	ListJobs(ctx context.Context, ownerID, callerID string, page, limit int, search string) ([]*models.Job, int, error)
	DeleteJob(ctx context.Context, id uuid.UUID, callerID string) error
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// It responds with the job id as soon as the pending record is durable;
// the analysis itself runs in the background.
func NewAnalyzeHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		var req struct {
			Text string `json:"text"`
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		job, err := svc.Submit(r.Context(), callerID, req.Text, req.Mode)
		if err != nil {
			writeJobError(w, err)
			return
		}

		response.Accepted(w, map[string]any{
			"job_id": job.ID,
			"status": job.Status,
		})
	}
}

// NewPollJobHandler returns an http.HandlerFunc for GET /api/v1/analyze/{jobID}.
// Clients poll it until status is completed or failed.
func NewPollJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job id", nil)
			return
		}

		job, err := svc.GetJob(r.Context(), jobID, callerID)
		if err != nil {
			writeJobError(w, err)
			return
		}

		response.JSON(w, job)
	}
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs/{userID}.
// Supports ?page=, ?limit=, and ?search= (case-insensitive substring on text).
func NewListJobsHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		ownerID := chi.URLParam(r, "userID")

		page := queryInt(r, "page", 1)
		if page < 1 {
			page = 1
		}
		limit := queryInt(r, "limit", defaultPageSize)
		if limit < 1 {
			limit = defaultPageSize
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		search := r.URL.Query().Get("search")

		jobs, total, err := svc.ListJobs(r.Context(), ownerID, callerID, page, limit, search)
		if err != nil {
			writeJobError(w, err)
			return
		}

		response.Collection(w, jobs, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewDeleteJobHandler returns an http.HandlerFunc for DELETE /api/v1/jobs/{jobID}.
func NewDeleteJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job id", nil)
			return
		}

		if err := svc.DeleteJob(r.Context(), jobID, callerID); err != nil {
			writeJobError(w, err)
			return
		}

		response.JSON(w, map[string]string{"message": "Job deleted successfully"})
	}
}

// writeJobError maps service errors to HTTP responses.
func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrEmptyText),
		errors.Is(err, ai.ErrTextTooLong),
		errors.Is(err, ai.ErrInvalidMode):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, ai.ErrAccessDenied):
		response.Error(w, http.StatusForbidden, "ACCESS_DENIED", "Access denied", nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
