package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider is the adapter for the OpenAI chat-completions API.
type OpenAIProvider struct {
	apiKey string
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{apiKey: apiKey, model: model}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req insight.Request) (insight.Insight, error) {
	if p.apiKey == "" {
		return insight.Insight{}, fmt.Errorf("openai provider has no API key")
	}

	client := openai.NewClient(
		option.WithAPIKey(p.apiKey),
	)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(safetySystemPrompt),
			openai.UserMessage(buildUserPrompt(req)),
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return insight.Insight{}, err
	}
	if len(completion.Choices) == 0 {
		return insight.Insight{}, fmt.Errorf("openai returned no choices")
	}

	return parseInsightJSON(completion.Choices[0].Message.Content)
}
