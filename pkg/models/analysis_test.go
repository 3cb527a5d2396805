package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult() AnalysisResult {
	return AnalysisResult{
		Summary:       "A short summary.",
		Sentiment:     SentimentPositive,
		PositiveScore: 60,
		NeutralScore:  30,
		NegativeScore: 10,
		Keywords:      []string{"one", "two", "three", "four", "five"},
	}
}

func TestAnalysisResult_Validate(t *testing.T) {
	r := validResult()
	require.NoError(t, r.Validate())
}

func TestAnalysisResult_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalysisResult)
	}{
		{"empty summary", func(r *AnalysisResult) { r.Summary = "" }},
		{"unknown sentiment", func(r *AnalysisResult) { r.Sentiment = "ambivalent" }},
		{"negative score", func(r *AnalysisResult) { r.PositiveScore = -1 }},
		{"score above hundred", func(r *AnalysisResult) { r.NeutralScore = 101 }},
		{"sum below hundred", func(r *AnalysisResult) { r.PositiveScore = 59 }},
		{"sum above hundred", func(r *AnalysisResult) { r.NegativeScore = 11 }},
		{"too few keywords", func(r *AnalysisResult) { r.Keywords = r.Keywords[:4] }},
		{"too many keywords", func(r *AnalysisResult) { r.Keywords = append(r.Keywords, "six") }},
		{"no keywords", func(r *AnalysisResult) { r.Keywords = nil }},
		{"empty keyword", func(r *AnalysisResult) { r.Keywords[2] = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeSimple))
	assert.True(t, ValidMode(ModeDeep))
	assert.False(t, ValidMode(""))
	assert.False(t, ValidMode("verbose"))
}
