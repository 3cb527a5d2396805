package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anirudhbagri/textsense/internal/ai/mock"
	"github.com/anirudhbagri/textsense/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() models.AnalysisRequest {
	return models.AnalysisRequest{
		Text: "The quick brown fox jumps over the lazy dog.",
		Mode: models.ModeSimple,
	}
}

// --- NewMockAnalyzer ---

func TestNewMockAnalyzer_Name(t *testing.T) {
	p := mock.NewMockAnalyzer()
	assert.Equal(t, "mock", p.Name())
}

func TestNewMockAnalyzer_Analyze(t *testing.T) {
	p := mock.NewMockAnalyzer()
	result, err := p.Analyze(context.Background(), sampleRequest())

	require.NoError(t, err)
	require.NoError(t, result.Validate())
	assert.NotEmpty(t, result.Summary)
	assert.Len(t, result.Keywords, models.KeywordCount)
	assert.Equal(t, 100, result.PositiveScore+result.NeutralScore+result.NegativeScore)
}

func TestNewMockAnalyzer_CountsCalls(t *testing.T) {
	p := mock.NewMockAnalyzer()
	for i := 0; i < 3; i++ {
		_, err := p.Analyze(context.Background(), sampleRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, p.Calls())
}

// --- NewFailingAnalyzer ---

func TestNewFailingAnalyzer(t *testing.T) {
	p := mock.NewFailingAnalyzer(models.ErrProviderUnavailable)
	assert.Equal(t, "mock-failing", p.Name())

	_, err := p.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}

// --- NewScriptedAnalyzer ---

func TestNewScriptedAnalyzer_FailsThenSucceeds(t *testing.T) {
	p := mock.NewScriptedAnalyzer(models.ErrRateLimited, models.ErrProviderUnavailable)

	_, err := p.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, models.ErrRateLimited)

	_, err = p.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)

	result, err := p.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.NoError(t, result.Validate())

	// Stays successful after the script runs out.
	_, err = p.Analyze(context.Background(), sampleRequest())
	assert.NoError(t, err)
	assert.Equal(t, 4, p.Calls())
}

// --- NewTimeoutAnalyzer ---

func TestNewTimeoutAnalyzer_BlocksUntilCancel(t *testing.T) {
	p := mock.NewTimeoutAnalyzer()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Analyze(ctx, sampleRequest())
	assert.ErrorIs(t, err, models.ErrInferenceTimeout)
	assert.False(t, errors.Is(err, models.ErrInvalidResponse))
}
