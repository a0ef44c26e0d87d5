package format

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIFormatter renders responses with an OpenAI chat model.
type OpenAIFormatter struct {
	client *openai.Client
	model  string
}

func NewOpenAIFormatter(apiKey, model string) *OpenAIFormatter {
	return &OpenAIFormatter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (f *OpenAIFormatter) Name() string { return "openai" }

func (f *OpenAIFormatter) Format(ctx context.Context, req Request) (string, error) {
	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
