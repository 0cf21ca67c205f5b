// Package ai generates CRM text (summaries, next steps, email drafts) with
// one of a closed set of hosted language models.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotConfigured   = errors.New("ai provider not configured")
	ErrConsentRequired = errors.New("ai features need the user's consent")
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-1.5-flash",
}

// Provider turns a prompt into text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt, system string, temperature float64) (string, error)
}

// ProviderError is a non-success answer from a provider API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Settings selects and configures a provider. BaseURL overrides the public
// endpoint (proxies, tests).
type Settings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url,omitempty"`
	Consent  bool   `json:"consent"`
}

// Configured reports whether a provider and key are set.
func (s Settings) Configured() bool {
	return s.Provider != "" && s.APIKey != ""
}

// ModelName returns the configured model, or the provider's default when
// none is set.
func (s Settings) ModelName() string {
	if s.Model != "" {
		return s.Model
	}
	return defaultModels[s.Provider]
}

// NewProvider builds the provider named in s. A nil client gets a default
// one with a two minute timeout.
func NewProvider(s Settings, client *http.Client) (Provider, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	model := s.ModelName()
	base := func(def string) string {
		if s.BaseURL != "" {
			return strings.TrimRight(s.BaseURL, "/")
		}
		return def
	}

	switch s.Provider {
	case ProviderOpenAI:
		return &openAI{baseURL: base("https://api.openai.com/v1"), apiKey: s.APIKey, model: model, client: client}, nil
	case ProviderAnthropic:
		return &anthropic{baseURL: base("https://api.anthropic.com"), apiKey: s.APIKey, model: model, client: client}, nil
	case ProviderGemini:
		return &gemini{baseURL: base("https://generativelanguage.googleapis.com"), apiKey: s.APIKey, model: model, client: client}, nil
	}
	return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, s.Provider)
}

// postJSON sends body and decodes a 2xx answer into out. Other statuses
// become a *ProviderError carrying the provider's own message when errMsg
// can find one.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any, errMsg func([]byte) string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errMsg(respBody)
		if msg == "" {
			msg = truncate(strings.TrimSpace(string(respBody)), 300)
		}
		return &ProviderError{Provider: provider, StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse %s response: %w", provider, err)
	}
	return nil
}

// apiErrorMessage reads {"error":{"message":...}}, the shape all three
// providers use.
func apiErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error.Message
}

func emptyAnswer(provider string) error {
	return &ProviderError{Provider: provider, StatusCode: http.StatusOK, Message: "empty response"}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
