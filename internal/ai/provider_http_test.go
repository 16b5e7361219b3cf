// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- Helpers ----------

// newTestServer creates an httptest.Server that responds with the given status
// code and body bytes. The caller must call Close on the returned server.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
}

// openAISuccessBody builds a JSON body matching the OpenAI chat completions
// response format with a single choice containing the given text.
func openAISuccessBody(text string) []byte {
	resp := openAIResponse{
		Choices: []openAIChoice{
			{Message: openAIMessage{Role: "assistant", Content: text}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// claudeSuccessBody builds a JSON body matching the Anthropic Messages
// response format with a single text content block.
func claudeSuccessBody(text string) []byte {
	resp := claudeResponse{
		Content: []claudeContentBlock{
			{Type: "text", Text: text},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// geminiSuccessBody builds a JSON body matching the Gemini generateContent
// response format with a single candidate containing the given text.
func geminiSuccessBody(text string) []byte {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// ---------- OpenAI ----------

func TestOpenAIGenerate_Success(t *testing.T) {
	want := "Hello from OpenAI"
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(want))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "You are helpful.", "Say hello")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestOpenAIGenerate_RequestShape(t *testing.T) {
	var capturedHeaders http.Header
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(openAISuccessBody("ok"))
	}))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), "system here", "user here"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := capturedHeaders.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("Authorization header: got %q", got)
	}
	if got := capturedHeaders.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type header: got %q", got)
	}

	var req openAIRequest
	if err := json.Unmarshal(capturedBody, &req); err != nil {
		t.Fatalf("unmarshal captured body: %v", err)
	}
	if req.Model != "gpt-4o-mini" {
		t.Errorf("model: got %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
}

func TestOpenAIGenerate_APIError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error":{"message":"rate limited"}}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode: got %d, want 429", statusErr.StatusCode)
	}
	if statusErr.Provider != "openai" {
		t.Errorf("Provider: got %q, want openai", statusErr.Provider)
	}
}

func TestOpenAIGenerate_NoChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"choices":[]}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

// ---------- Claude ----------

func TestClaudeGenerate_Success(t *testing.T) {
	want := "Hello from Claude"
	srv := newTestServer(t, http.StatusOK, claudeSuccessBody(want))
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "test-key", Model: "claude-sonnet-4-20250514", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "You are helpful.", "Say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestClaudeGenerate_RequestShape(t *testing.T) {
	var capturedHeaders http.Header
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write(claudeSuccessBody("ok"))
	}))
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "test-key", Model: "claude-sonnet-4-20250514", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), "system here", "user here"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := capturedHeaders.Get("x-api-key"); got != "test-key" {
		t.Errorf("x-api-key header: got %q", got)
	}
	if got := capturedHeaders.Get("anthropic-version"); got == "" {
		t.Error("missing anthropic-version header")
	}

	var req claudeRequest
	if err := json.Unmarshal(capturedBody, &req); err != nil {
		t.Fatalf("unmarshal captured body: %v", err)
	}
	if req.System != "system here" {
		t.Errorf("system: got %q", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
	if req.MaxTokens == 0 {
		t.Error("max_tokens must be set")
	}
}

func TestClaudeGenerate_APIError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, []byte(`{"error":"bad request"}`))
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "s", "u")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 StatusError, got %v", err)
	}
}

// ---------- Gemini ----------

func TestGeminiGenerate_Success(t *testing.T) {
	want := "Hello from Gemini"
	srv := newTestServer(t, http.StatusOK, geminiSuccessBody(want))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "test-key", Model: "gemini-2.0-flash", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "You are helpful.", "Say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestGeminiGenerate_ModelInURL(t *testing.T) {
	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write(geminiSuccessBody("ok"))
	}))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "test-key", Model: "gemini-2.0-flash", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), "s", "u"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(capturedPath, "models/gemini-2.0-flash:generateContent") {
		t.Errorf("unexpected path: %q", capturedPath)
	}
}

func TestGeminiGenerate_NoCandidates(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"candidates":[]}`))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

// ---------- Mistral ----------

func TestMistralGenerate_Success(t *testing.T) {
	want := "Hello from Mistral"
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(want))
	defer srv.Close()

	p := newMistral(ProviderConfig{APIKey: "test-key", Model: "mistral-small-latest", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "You are helpful.", "Say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestMistralGenerate_APIErrorNamesMistral(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, []byte(`{"message":"bad key"}`))
	defer srv.Close()

	p := newMistral(ProviderConfig{APIKey: "bad", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "s", "u")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Provider != "mistral" {
		t.Errorf("Provider: got %q, want mistral", statusErr.Provider)
	}
}

// ---------- Image search ----------

func TestImageSearch_Success(t *testing.T) {
	body := `{"result_count":2,"results":[
		{"title":"Sunset","url":"https://img.example/1.jpg","thumbnail":"https://img.example/1_t.jpg","creator":"alice","license":"by"},
		{"title":"Forest","url":"https://img.example/2.jpg","thumbnail":"https://img.example/2_t.jpg","creator":"bob","license":"cc0"}
	]}`
	var capturedQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	}))
	defer srv.Close()

	s := NewImageSearch(srv.URL)
	got, err := s.Search(context.Background(), "golden sunset", 12)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if capturedQuery != "golden sunset" {
		t.Errorf("query param: got %q", capturedQuery)
	}
	if len(got) != 2 {
		t.Fatalf("results: got %d, want 2", len(got))
	}
	if got[0].Title != "Sunset" || got[0].Creator != "alice" {
		t.Errorf("unexpected first result: %+v", got[0])
	}
}

func TestImageSearch_UpstreamError(t *testing.T) {
	srv := newTestServer(t, http.StatusServiceUnavailable, []byte(`{"detail":"down"}`))
	defer srv.Close()

	s := NewImageSearch(srv.URL)
	_, err := s.Search(context.Background(), "anything", 5)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
}
