package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildInstructionPrompt(t *testing.T) {
	got := BuildInstructionPrompt("hello wrold")
	if !strings.HasPrefix(got, "Fix the following text") {
		t.Errorf("prompt = %q", got)
	}
	if !strings.HasSuffix(got, "\n---\nhello wrold") {
		t.Errorf("prompt should end with the separator and text, got %q", got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Provider: "gemini"}); !errors.Is(err, ErrMissingModel) {
		t.Errorf("missing model err = %v", err)
	}
	if _, err := New(Config{Provider: "bard", Model: "m"}); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("unknown provider err = %v", err)
	}
	c, err := New(Config{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if c.backend.name() != ProviderGemini {
		t.Errorf("default provider = %s", c.backend.name())
	}
}

func TestCorrectValidatesRequest(t *testing.T) {
	c, _ := New(Config{Provider: "openrouter", Model: "m", BaseURL: "http://127.0.0.1:1/"})
	if _, err := c.Correct(context.Background(), Request{Prompt: "x"}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v", err)
	}
	if _, err := c.Correct(context.Background(), Request{Prompt: " ", Credential: "k"}); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("err = %v", err)
	}
}

func TestOpenRouterCorrect(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  hello world\n"}}]}`)
	}))
	defer srv.Close()

	c, err := New(Config{Provider: "openrouter", Model: "test/model", Providers: []string{"groq"}, BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Correct(context.Background(), Request{Prompt: BuildInstructionPrompt("hello wrold"), Credential: "test-key"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "hello world" {
		t.Errorf("reply = %q, want trimmed text", got)
	}
	if body["model"] != "test/model" {
		t.Errorf("model = %v", body["model"])
	}
	provider, _ := body["provider"].(map[string]any)
	if provider == nil || provider["allow_fallbacks"] != false {
		t.Errorf("provider preferences = %v", body["provider"])
	}
}

func TestOpenRouterClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"auth","code":"401"}}`)
	}))
	defer srv.Close()

	c, _ := New(Config{Provider: "openrouter", Model: "m", BaseURL: srv.URL + "/", RetryDelay: -1})
	_, err := c.Correct(context.Background(), Request{Prompt: "p", Credential: "k"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want HTTP 401", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestOpenRouterServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"error":{"message":"upstream","type":"server","code":"502"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	c, _ := New(Config{Provider: "openrouter", Model: "m", BaseURL: srv.URL + "/", RetryDelay: -1})
	got, err := c.Correct(context.Background(), Request{Prompt: "p", Credential: "k"})
	if err != nil || got != "ok" {
		t.Fatalf("Correct = %q, %v", got, err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGeminiCorrect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("x-goog-api-key") != "gem-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hello world\n"}]}}]}`)
	}))
	defer srv.Close()

	c, _ := New(Config{Provider: "gemini", Model: "gemini-test", BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := c.Correct(ctx, Request{Prompt: "p", Credential: "gem-key"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "hello world" {
		t.Errorf("reply = %q", got)
	}
}

func TestGeminiHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"key rejected","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	c, _ := New(Config{Provider: "gemini", Model: "gemini-test", BaseURL: srv.URL, RetryDelay: -1})
	_, err := c.Correct(context.Background(), Request{Prompt: "p", Credential: "k"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("err = %v, want HTTP 403", err)
	}
	if !strings.Contains(httpErr.Error(), "key rejected") {
		t.Errorf("error should carry the body, got %q", httpErr.Error())
	}
}
