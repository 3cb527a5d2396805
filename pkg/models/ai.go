package models

import (
	"context"
	"errors"
)

// TextAnalyzer is the core interface that all LLM integrations must implement.
// Never call specific providers directly; always inject this interface.
type TextAnalyzer interface {
	// Analyze produces a structured analysis of the request text. The context
	// carries the per-attempt timeout; implementations must honor cancellation.
	// Failures are reported through the sentinel errors below so callers can
	// tell transient from permanent ones.
	Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}

// AnalysisRequest is the input to a text analysis operation.
type AnalysisRequest struct {
	Text string
	Mode string // ModeSimple or ModeDeep
}

// Provider failure classes. The first three are transient and worth retrying;
// ErrInvalidResponse is permanent.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrRateLimited         = errors.New("ai provider rate limited")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)
