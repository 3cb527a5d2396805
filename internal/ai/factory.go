package ai

import (
	"fmt"

	"github.com/anirudhbagri/textsense/internal/ai/anthropic"
	"github.com/anirudhbagri/textsense/internal/ai/ollama"
	"github.com/anirudhbagri/textsense/internal/ai/openai"
	"github.com/anirudhbagri/textsense/internal/config"
	"github.com/anirudhbagri/textsense/pkg/models"
)

// NewProvider constructs the appropriate analysis provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.TextAnalyzer, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, anthropic, ollama", cfg.Provider)
	}
}
