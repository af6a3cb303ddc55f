package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider is the adapter for the Google Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Generate(ctx context.Context, req insight.Request) (insight.Insight, error) {
	if p.apiKey == "" {
		return insight.Insight{}, fmt.Errorf("gemini provider has no API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return insight.Insight{}, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(safetySystemPrompt, ""),
		ResponseMIMEType:  "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"score":       {Type: "integer", Description: "Safety score 0-100."},
				"explanation": {Type: "string", Description: "Short narrative assessment."},
			},
			Required: []string{"score", "explanation"},
		},
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: buildUserPrompt(req)}}}}

	result, err := client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return insight.Insight{}, err
	}

	return parseInsightJSON(result.Text())
}
