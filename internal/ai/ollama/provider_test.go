package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anirudhbagri/textsense/internal/config"
	"github.com/anirudhbagri/textsense/pkg/models"
)

func testConfig(baseURL string) config.OllamaConfig {
	return config.OllamaConfig{
		BaseURL:     baseURL,
		SimpleModel: "llama3.2",
		DeepModel:   "llama3.3:70b",
	}
}

func analysisJSON() string {
	b, _ := json.Marshal(models.AnalysisResult{
		Summary:       "A mixed review of a laptop.",
		Sentiment:     models.SentimentNeutral,
		PositiveScore: 40,
		NeutralScore:  35,
		NegativeScore: 25,
		Keywords:      []string{"laptop", "keyboard", "battery", "weight", "port"},
	})
	return string(b)
}

func chatReply(content string) chatResponse {
	return chatResponse{Message: chatMessage{Role: "assistant", Content: content}}
}

func sampleRequest() models.AnalysisRequest {
	return models.AnalysisRequest{Text: "The keyboard is decent but the battery disappoints.", Mode: models.ModeSimple}
}

func TestAnalyze_ValidResponse(t *testing.T) {
	var captured chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatReply(analysisJSON()))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	result, err := p.Analyze(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("result should satisfy the contract: %v", err)
	}

	if captured.Model != "llama3.2" {
		t.Errorf("expected simple model, got %s", captured.Model)
	}
	if captured.Format != "json" {
		t.Errorf("expected json format mode, got %q", captured.Format)
	}
	if captured.Stream {
		t.Error("streaming must be disabled")
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages, got %+v", captured.Messages)
	}
}

func TestAnalyze_DeepModeUsesDeepModel(t *testing.T) {
	var captured chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(chatReply(analysisJSON()))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	req := sampleRequest()
	req.Mode = models.ModeDeep
	if _, err := p.Analyze(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Model != "llama3.3:70b" {
		t.Errorf("expected deep model, got %s", captured.Model)
	}
}

func TestAnalyze_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestAnalyze_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatReply(""))
	}))
	defer ts.Close()

	p := NewProvider(testConfig(ts.URL))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestAnalyze_ConnectionRefused(t *testing.T) {
	p := NewProvider(testConfig("http://127.0.0.1:1"))
	_, err := p.Analyze(context.Background(), sampleRequest())
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}
