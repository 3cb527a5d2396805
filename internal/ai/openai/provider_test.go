package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anirudhbagri/textsense/internal/config"
	"github.com/anirudhbagri/textsense/pkg/models"
)

// --- helpers ---

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:      "sk-test",
		BaseURL:     baseURL,
		SimpleModel: "gpt-4o-mini",
		DeepModel:   "gpt-4o-2024-08-06",
	}
}

func analysisJSON() string {
	b, _ := json.Marshal(models.AnalysisResult{
		Summary:       "A pangram about a fox.",
		Sentiment:     models.SentimentNeutral,
		PositiveScore: 10,
		NeutralScore:  85,
		NegativeScore: 5,
		Keywords:      []string{"fox", "dog", "jump", "quick", "lazy"},
	})
	return string(b)
}

func completionResponse(content, refusal string) chatResponse {
	var cr chatResponse
	cr.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	}, 1)
	cr.Choices[0].Message.Content = content
	cr.Choices[0].Message.Refusal = refusal
	return cr
}

func sampleRequest() models.AnalysisRequest {
	return models.AnalysisRequest{
		Text: "The quick brown fox jumps over the lazy dog.",
		Mode: models.ModeSimple,
	}
}

// --- tests ---

func TestAnalyze_ValidResponse(t *testing.T) {
	var captured chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(completionResponse(analysisJSON(), ""))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	result, err := p.Analyze(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summary != "A pangram about a fox." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if len(result.Keywords) != 5 {
		t.Errorf("expected 5 keywords, got %d", len(result.Keywords))
	}
	if err := result.Validate(); err != nil {
		t.Errorf("result should satisfy the contract: %v", err)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("expected simple model, got %s", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_schema" {
		t.Errorf("expected json_schema response format, got %+v", captured.ResponseFormat)
	}
	if !captured.ResponseFormat.JSONSchema.Strict {
		t.Error("expected strict schema")
	}
}

func TestAnalyze_DeepModeUsesDeepModel(t *testing.T) {
	var captured chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(completionResponse(analysisJSON(), ""))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	req := sampleRequest()
	req.Mode = models.ModeDeep
	if _, err := p.Analyze(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Model != "gpt-4o-2024-08-06" {
		t.Errorf("expected deep model, got %s", captured.Model)
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestAnalyze_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestAnalyze_ClientErrorIsPermanent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestAnalyze_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestAnalyze_Refusal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(completionResponse("", "I can't analyze that"))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestAnalyze_MalformedContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(completionResponse("not json at all", ""))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestAnalyze_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Analyze(ctx, sampleRequest())
	if !errors.Is(err, models.ErrInferenceTimeout) {
		t.Errorf("expected ErrInferenceTimeout, got %v", err)
	}
}

func TestAnalyze_ConnectionRefused(t *testing.T) {
	p := NewProvider(testConfig("http://127.0.0.1:1"))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}
