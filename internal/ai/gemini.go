package ai

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type gemini struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *gemini) Name() string { return ProviderGemini }

func (p *gemini) Generate(ctx context.Context, prompt, system string, temperature float64) (string, error) {
	var req geminiRequest
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	req.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}
	req.GenerationConfig.Temperature = temperature

	endpoint := p.baseURL + "/v1beta/models/" + url.PathEscape(p.model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": p.apiKey}

	var resp geminiResponse
	if err := postJSON(ctx, p.client, ProviderGemini, endpoint, headers, req, &resp, apiErrorMessage); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", emptyAnswer(ProviderGemini)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", emptyAnswer(ProviderGemini)
	}
	return strings.TrimSpace(b.String()), nil
}
