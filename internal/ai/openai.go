package ai

import (
	"context"
	"net/http"
	"strings"
)

type openAI struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *openAI) Name() string { return ProviderOpenAI }

func (p *openAI) Generate(ctx context.Context, prompt, system string, temperature float64) (string, error) {
	req := chatRequest{Model: p.model, Temperature: temperature}
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: prompt})

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := postJSON(ctx, p.client, ProviderOpenAI, p.baseURL+"/chat/completions", headers, req, &resp, apiErrorMessage); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", emptyAnswer(ProviderOpenAI)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
