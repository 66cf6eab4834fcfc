package caption

import (
	"fmt"

	"cooknet/internal/config"
)

// Factory creates caption clients with consistent logic
type Factory struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIModel:      cfg.OpenAIModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider config.CaptionProvider) (Client, error) {
	switch provider {
	case config.ProviderOpenAI:
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, f.OpenAIModel), nil
	case config.ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown caption provider: %s", provider)
	}
}
