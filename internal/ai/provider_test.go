package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path    string
	Headers http.Header
	Body    map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []capturedRequest
}

func (r *recorder) first() capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[0]
}

// fakeAPI answers every request with status and body and records what it got.
func fakeAPI(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	got := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)
		got.mu.Lock()
		got.reqs = append(got.reqs, capturedRequest{Path: r.URL.Path, Headers: r.Header.Clone(), Body: decoded})
		got.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestOpenAI_Generate(t *testing.T) {
	srv, got := fakeAPI(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`)
	p, err := NewProvider(Settings{Provider: ProviderOpenAI, APIKey: "sk-1", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "prompt", "system", 0.2)

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	req := got.first()
	assert.Equal(t, "/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-1", req.Headers.Get("Authorization"))
	assert.Equal(t, "gpt-4o-mini", req.Body["model"])
	assert.Equal(t, 0.2, req.Body["temperature"])
	msgs := req.Body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "prompt", msgs[1].(map[string]any)["content"])
}

func TestAnthropic_Generate(t *testing.T) {
	srv, got := fakeAPI(t, http.StatusOK, `{"content":[{"type":"text","text":"hi "},{"type":"text","text":"there"}]}`)
	p, err := NewProvider(Settings{Provider: ProviderAnthropic, APIKey: "ak", Model: "claude-x", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "prompt", "system", 0.5)

	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
	req := got.first()
	assert.Equal(t, "/v1/messages", req.Path)
	assert.Equal(t, "ak", req.Headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Headers.Get("anthropic-version"))
	assert.Equal(t, "claude-x", req.Body["model"])
	assert.Equal(t, "system", req.Body["system"])
}

func TestGemini_Generate(t *testing.T) {
	srv, got := fakeAPI(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"bonjour"}]}}]}`)
	p, err := NewProvider(Settings{Provider: ProviderGemini, APIKey: "gk", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "prompt", "system", 0.7)

	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)
	req := got.first()
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", req.Path)
	assert.Equal(t, "gk", req.Headers.Get("x-goog-api-key"))
	assert.Contains(t, req.Body, "systemInstruction")
}

func TestProviderError(t *testing.T) {
	srv, _ := fakeAPI(t, http.StatusUnauthorized, `{"error":{"message":"invalid api key"}}`)
	for _, name := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		t.Run(name, func(t *testing.T) {
			p, err := NewProvider(Settings{Provider: name, APIKey: "bad", BaseURL: srv.URL}, nil)
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), "p", "s", 0)

			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, name, perr.Provider)
			assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
			assert.Equal(t, "invalid api key", perr.Message)
		})
	}
}

func TestProviderError_EmptyAnswer(t *testing.T) {
	srv, _ := fakeAPI(t, http.StatusOK, `{"choices":[]}`)
	p, err := NewProvider(Settings{Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "p", "s", 0)

	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestNewProvider_NotConfigured(t *testing.T) {
	_, err := NewProvider(Settings{Provider: ProviderOpenAI}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewProvider(Settings{Provider: "mistral", APIKey: "k"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
