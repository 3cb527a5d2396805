// Package anthropic implements models.TextAnalyzer against the Anthropic
// messages API. The model is instructed to answer with JSON only; the first
// text block is parsed as the analysis.
package anthropic

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

const (
	apiVersion = "2023-06-01"
	maxTokens  = 1024
)

// jsonInstruction is appended to the system prompt since the messages API has
// no schema-constrained output mode.
const jsonInstruction = ` Respond with a single JSON object and nothing else, using exactly these keys: "summary" (string), "sentiment" ("positive"|"negative"|"neutral"), "positiveScore" (integer), "neutralScore" (integer), "negativeScore" (integer), "keywords" (array of exactly 5 strings).`

// Provider implements models.TextAnalyzer using Anthropic.
type Provider struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	model := p.cfg.SimpleModel
	if req.Mode == models.ModeDeep {
		model = p.cfg.DeepModel
	}

	body := messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    prompt.System(req.Mode) + jsonInstruction,
		Messages: []message{
			{Role: "user", Content: prompt.User(req.Text)},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.AnalysisResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.AnalysisResult{}, fmt.Errorf("%w: status 429", models.ErrRateLimited)
	case resp.StatusCode >= 500:
		// 529 "overloaded" lands here too.
		return models.AnalysisResult{}, fmt.Errorf("%w: status %d", models.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return models.AnalysisResult{}, fmt.Errorf("%w: unexpected status %d", models.ErrInvalidResponse, resp.StatusCode)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: decoding response: %v", models.ErrInvalidResponse, err)
	}

	text := mr.firstText()
	if text == "" {
		return models.AnalysisResult{}, fmt.Errorf("%w: no text content returned", models.ErrInvalidResponse)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
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

// --- Anthropic request/response types ---

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (r *messagesResponse) firstText() string {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// Compile-time check that Provider implements TextAnalyzer.
var _ models.TextAnalyzer = (*Provider)(nil)
