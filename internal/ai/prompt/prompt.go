// Package prompt holds the mode-specific instructions shared by all providers.
package prompt

import (
	"fmt"

	"github.com/anirudhbagri/textsense/pkg/models"
)

const simpleSystem = `You are a helpful assistant that analyzes text and provides structured output. Always provide: 1) A concise summary (1-3 sentences), 2) Overall sentiment (positive/negative/neutral), 3) Sentiment scores as integer percentages (positiveScore, neutralScore, negativeScore) that add up to exactly 100, 4) Exactly 5 relevant keywords. Be literal and concise; do not speculate beyond the text.`

const deepSystem = `You are an expert analyst performing a close reading of text. Always provide: 1) A nuanced summary (1-3 sentences) that captures subtext, tone, and any rhetorical devices at work, 2) Overall sentiment (positive/negative/neutral) weighing implied as well as stated attitudes, 3) Sentiment scores as integer percentages (positiveScore, neutralScore, negativeScore) that add up to exactly 100, 4) Exactly 5 keywords chosen for conceptual salience rather than frequency. Make sure the three sentiment scores add up to exactly 100.`

// System returns the system prompt for the given analysis mode.
func System(mode string) string {
	if mode == models.ModeDeep {
		return deepSystem
	}
	return simpleSystem
}

// User wraps the submitted text into the user message.
func User(text string) string {
	return fmt.Sprintf("Please analyze this text:\n\n%s", text)
}
