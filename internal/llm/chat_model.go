package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/RedditLens/config"
)

// NewChatModel builds the tool-calling chat model for the configured provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	if cfg.LLMAPIKey() == "" {
		return nil, fmt.Errorf("api key for llm provider %q is not set", cfg.LLMProvider)
	}

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		maxTokens := cfg.MaxTokens
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.ModelName(),
			MaxTokens: &maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai chat model: %w", err)
		}
		return chatModel, nil

	case config.ProviderDeepSeek:
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.ModelName(),
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek chat model: %w", err)
		}
		return chatModel, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
