package caption

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	captionSystemPrompt = "Ты — кулинарный редактор CookNet. По названию и описанию блюда составь короткую аппетитную подпись (1-2 предложения, без хэштегов)."

	cameraSystemPrompt = "Ты — шеф-повар AI. Определи продукты на фото и предложи 2–3 рецепта из них."
	cameraUserPrompt   = "Посмотри на фото и опиши, что на нём, и предложи рецепты."
)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Caption(ctx context.Context, title, description string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: captionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Название: %s\nОписание: %s", title, description)},
		},
		MaxTokens: 120,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) SuggestRecipes(ctx context.Context, photoURL string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: cameraSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: cameraUserPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: photoURL}},
				},
			},
		},
		MaxTokens: 400,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
