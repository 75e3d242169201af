package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/tool"

	"github.com/dyike/RedditLens/config"
	"github.com/dyike/RedditLens/internal/agent"
	"github.com/dyike/RedditLens/internal/debug"
	"github.com/dyike/RedditLens/internal/filter"
	"github.com/dyike/RedditLens/internal/llm"
	"github.com/dyike/RedditLens/internal/sentiment"
	"github.com/dyike/RedditLens/internal/tools"
	"github.com/dyike/RedditLens/pkg/dataflows"
)

// App holds the clients built once at startup.
type App struct {
	Config       *config.Config
	Reddit       *dataflows.RedditClient
	Orchestrator *agent.Orchestrator
}

// NewRedditClient builds the search adapter and proves the credentials work.
func NewRedditClient(ctx context.Context, cfg *config.Config) (*dataflows.RedditClient, error) {
	reddit := dataflows.NewRedditClient(cfg)
	if err := reddit.Authenticate(ctx); err != nil {
		return nil, err
	}
	return reddit, nil
}

// NewApp wires the Reddit client, chat model, classifier and orchestrator.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Before agent.New, so the compiled answer graph shows up in the debugger.
	if err := debug.NewEinoDebugger(cfg).Initialize(ctx); err != nil {
		slog.WarnContext(ctx, "eino debugger unavailable", "error", err)
	}

	reddit, err := NewRedditClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chat, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	toolset := []tool.InvokableTool{tools.NewRedditSearchTool(reddit)}
	if cfg.SentimentFilter {
		classifier := sentiment.NewLLMClassifier(chat)
		toolset = append(toolset, tools.NewPostFilterTool(filter.New(classifier)))
	}

	orch, err := agent.New(ctx, chat, toolset,
		agent.WithSentimentFilter(cfg.SentimentFilter),
		agent.WithCallbackHandlers(llm.NewLoggerCallback(slog.Default())),
	)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "app ready",
		"provider", cfg.LLMProvider,
		"model", cfg.ModelName(),
		"streaming", cfg.Streaming,
		"sentiment_filter", cfg.SentimentFilter)

	return &App{
		Config:       cfg,
		Reddit:       reddit,
		Orchestrator: orch,
	}, nil
}
