// Package mock provides TextAnalyzer test doubles with deterministic
// success and failure behavior.
package mock

import (
	"context"
	"sync"

	"github.com/anirudhbagri/textsense/pkg/models"
)

// MockAnalyzer satisfies models.TextAnalyzer for testing.
type MockAnalyzer struct {
	Name_       string
	AnalyzeFunc func(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)

	mu    sync.Mutex
	calls int
}

func (m *MockAnalyzer) Name() string { return m.Name_ }

func (m *MockAnalyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return ValidResult(), nil
}

// Calls returns how many times Analyze was invoked.
func (m *MockAnalyzer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ValidResult returns an analysis satisfying the structural contract.
func ValidResult() models.AnalysisResult {
	return models.AnalysisResult{
		Summary:       "Mock analysis summary for testing.",
		Sentiment:     models.SentimentNeutral,
		PositiveScore: 20,
		NeutralScore:  70,
		NegativeScore: 10,
		Keywords:      []string{"alpha", "beta", "gamma", "delta", "epsilon"},
	}
}

// NewMockAnalyzer returns a MockAnalyzer that always succeeds.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{Name_: "mock"}
}

// NewFailingAnalyzer returns a MockAnalyzer that always returns the given error.
func NewFailingAnalyzer(err error) *MockAnalyzer {
	return &MockAnalyzer{
		Name_: "mock-failing",
		AnalyzeFunc: func(_ context.Context, _ models.AnalysisRequest) (models.AnalysisResult, error) {
			return models.AnalysisResult{}, err
		},
	}
}

// NewScriptedAnalyzer returns a MockAnalyzer that fails with each error in
// sequence, then succeeds with a valid result on every later call.
func NewScriptedAnalyzer(errs ...error) *MockAnalyzer {
	var mu sync.Mutex
	i := 0
	return &MockAnalyzer{
		Name_: "mock-scripted",
		AnalyzeFunc: func(_ context.Context, _ models.AnalysisRequest) (models.AnalysisResult, error) {
			mu.Lock()
			defer mu.Unlock()
			if i < len(errs) {
				err := errs[i]
				i++
				return models.AnalysisResult{}, err
			}
			return ValidResult(), nil
		},
	}
}

// NewTimeoutAnalyzer returns a MockAnalyzer that blocks until the context is
// cancelled.
func NewTimeoutAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{
		Name_: "mock-timeout",
		AnalyzeFunc: func(ctx context.Context, _ models.AnalysisRequest) (models.AnalysisResult, error) {
			<-ctx.Done()
			return models.AnalysisResult{}, models.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockAnalyzer implements TextAnalyzer.
var _ models.TextAnalyzer = (*MockAnalyzer)(nil)
