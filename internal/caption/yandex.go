package caption

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	return &YandexClient{
		ya:       ya,
		iamToken: resp.IamToken,
	}, nil
}

func (c *YandexClient) Caption(ctx context.Context, title, description string) (string, error) {
	messages := []yagpt.Message{
		{Role: "system", Content: captionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Название: %s\nОписание: %s", title, description)},
	}
	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		return "", fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return "", fmt.Errorf("yagpt returned empty response")
	}
	return resp.Alternatives[0].Message.Content, nil
}

// SuggestRecipes is unsupported: YandexGPT has no image input here. Callers
// degrade the same way they do on any collaborator failure.
func (c *YandexClient) SuggestRecipes(ctx context.Context, photoURL string) (string, error) {
	return "", fmt.Errorf("photo analysis is not supported by the yandex provider")
}
