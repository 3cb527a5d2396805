package ai

import (
	"errors"

	"github.com/anirudhbagri/textsense/pkg/models"
)

// Submission validation errors. A rejected submission never creates a job.
var (
	ErrEmptyText   = errors.New("text is empty")
	ErrTextTooLong = errors.New("text exceeds maximum length")
	ErrInvalidMode = errors.New("invalid analysis mode")
)

// ErrAccessDenied is returned when a caller touches a job owned by someone else.
var ErrAccessDenied = errors.New("access denied")

// isTransient reports whether a provider failure is worth retrying.
func isTransient(err error) bool {
	return errors.Is(err, models.ErrProviderUnavailable) ||
		errors.Is(err, models.ErrRateLimited) ||
		errors.Is(err, models.ErrInferenceTimeout)
}
