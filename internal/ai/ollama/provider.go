// Package ollama implements models.TextAnalyzer against a local Ollama
// instance using the chat API's JSON output mode.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/anirudhbagri/textsense/internal/ai/prompt"
	"github.com/anirudhbagri/textsense/internal/config"
	"github.com/anirudhbagri/textsense/pkg/models"
)

// jsonInstruction supplements the shared prompt; Ollama's json format mode
// guarantees valid JSON but not the key set.
const jsonInstruction = ` Respond with a single JSON object using exactly these keys: "summary", "sentiment", "positiveScore", "neutralScore", "negativeScore", "keywords".`

// Provider implements models.TextAnalyzer using Ollama.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	model := p.cfg.SimpleModel
	if req.Mode == models.ModeDeep {
		model = p.cfg.DeepModel
	}

	body := chatRequest{
		Model:  model,
		Format: "json",
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System(req.Mode) + jsonInstruction},
			{Role: "user", Content: prompt.User(req.Text)},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.AnalysisResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.AnalysisResult{}, fmt.Errorf("%w: status 429", models.ErrRateLimited)
	case resp.StatusCode >= 500:
		return models.AnalysisResult{}, fmt.Errorf("%w: status %d", models.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return models.AnalysisResult{}, fmt.Errorf("%w: unexpected status %d", models.ErrInvalidResponse, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: decoding response: %v", models.ErrInvalidResponse, err)
	}
	if cr.Message.Content == "" {
		return models.AnalysisResult{}, fmt.Errorf("%w: empty message content", models.ErrInvalidResponse)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(cr.Message.Content)), &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: parsing analysis: %v", models.ErrInvalidResponse, err)
	}
	return result, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

// --- Ollama request/response types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Format   string        `json:"format"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Compile-time check that Provider implements TextAnalyzer.
var _ models.TextAnalyzer = (*Provider)(nil)
