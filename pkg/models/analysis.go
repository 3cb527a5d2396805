package models

import "fmt"

// Sentiment labels a provider may return.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// KeywordCount is the exact number of keywords every analysis must carry.
const KeywordCount = 5

// AnalysisResult holds the structured output of a text analysis.
// The three sentiment scores are percentages and must sum to exactly 100.
type AnalysisResult struct {
	Summary       string   `json:"summary"`
	Sentiment     string   `json:"sentiment"`
	PositiveScore int      `json:"positiveScore"`
	NeutralScore  int      `json:"neutralScore"`
	NegativeScore int      `json:"negativeScore"`
	Keywords      []string `json:"keywords"`
}

// Validate checks the structural contract every provider response must meet.
// A violating response is a permanent parse failure, never silently accepted.
func (r *AnalysisResult) Validate() error {
	if r.Summary == "" {
		return fmt.Errorf("summary is empty")
	}
	switch r.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return fmt.Errorf("unknown sentiment %q", r.Sentiment)
	}
	for _, s := range []int{r.PositiveScore, r.NeutralScore, r.NegativeScore} {
		if s < 0 || s > 100 {
			return fmt.Errorf("sentiment score %d out of range [0,100]", s)
		}
	}
	if sum := r.PositiveScore + r.NeutralScore + r.NegativeScore; sum != 100 {
		return fmt.Errorf("sentiment scores sum to %d, want 100", sum)
	}
	if len(r.Keywords) != KeywordCount {
		return fmt.Errorf("got %d keywords, want exactly %d", len(r.Keywords), KeywordCount)
	}
	for i, k := range r.Keywords {
		if k == "" {
			return fmt.Errorf("keyword %d is empty", i)
		}
	}
	return nil
}
