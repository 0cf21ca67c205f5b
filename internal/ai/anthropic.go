package ai

import (
	"context"
	"net/http"
	"strings"
)

const anthropicVersion = "2023-06-01"

type anthropic struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *anthropic) Name() string { return ProviderAnthropic }

func (p *anthropic) Generate(ctx context.Context, prompt, system string, temperature float64) (string, error) {
	req := messagesRequest{
		Model:       p.model,
		MaxTokens:   1024,
		System:      system,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp messagesResponse
	if err := postJSON(ctx, p.client, ProviderAnthropic, p.baseURL+"/v1/messages", headers, req, &resp, apiErrorMessage); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	if b.Len() == 0 {
		return "", emptyAnswer(ProviderAnthropic)
	}
	return strings.TrimSpace(b.String()), nil
}
