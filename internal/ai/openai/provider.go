// Package openai implements models.TextAnalyzer against the OpenAI chat
// completions API, using structured outputs to enforce the response shape.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/anirudhbagri/textsense/internal/ai/prompt"
	"github.com/anirudhbagri/textsense/internal/config"
	"github.com/anirudhbagri/textsense/pkg/models"
)

// Provider implements models.TextAnalyzer using OpenAI.
type Provider struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

// NewProvider creates a new OpenAI provider. Per-attempt timeouts come from
// the caller's context, not the HTTP client.
func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	model := p.cfg.SimpleModel
	if req.Mode == models.ModeDeep {
		model = p.cfg.DeepModel
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System(req.Mode)},
			{Role: "user", Content: prompt.User(req.Text)},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   "text_analysis",
				Strict: true,
				Schema: json.RawMessage(analysisSchema),
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

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
	if len(cr.Choices) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("%w: no choices returned", models.ErrInvalidResponse)
	}

	msg := cr.Choices[0].Message
	if msg.Refusal != "" {
		return models.AnalysisResult{}, fmt.Errorf("%w: model refused the request", models.ErrInvalidResponse)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(msg.Content), &result); err != nil {
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

// analysisSchema is the strict JSON schema every completion must satisfy.
const analysisSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"sentiment": {"type": "string", "enum": ["positive", "negative", "neutral"]},
		"positiveScore": {"type": "integer"},
		"neutralScore": {"type": "integer"},
		"negativeScore": {"type": "integer"},
		"keywords": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["summary", "sentiment", "positiveScore", "neutralScore", "negativeScore", "keywords"],
	"additionalProperties": false
}`

// --- OpenAI request/response types ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

// Compile-time check that Provider implements TextAnalyzer.
var _ models.TextAnalyzer = (*Provider)(nil)
