package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// NewLoggerCallback returns a callback handler that logs every chat model
// round trip at debug level.
func NewLoggerCallback(log *slog.Logger) callbacks.Handler {
	if log == nil {
		log = slog.Default()
	}

	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			in := model.ConvCallbackInput(input)
			if in == nil {
				return ctx
			}
			log.DebugContext(ctx, "chat model request",
				"component", componentName(info),
				"messages", len(in.Messages),
				"tools", len(in.Tools))
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			out := model.ConvCallbackOutput(output)
			if out == nil || out.Message == nil {
				return ctx
			}
			attrs := []any{
				"component", componentName(info),
				"tool_calls", len(out.Message.ToolCalls),
				"content_len", len(out.Message.Content),
			}
			if out.TokenUsage != nil {
				attrs = append(attrs,
					"prompt_tokens", out.TokenUsage.PromptTokens,
					"completion_tokens", out.TokenUsage.CompletionTokens)
			}
			log.DebugContext(ctx, "chat model response", attrs...)
			return ctx
		}).
		OnEndWithStreamOutputFn(func(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
			go func() {
				defer output.Close()
				defer func() {
					if r := recover(); r != nil {
						log.ErrorContext(ctx, "chat model stream callback panicked", "panic", r)
					}
				}()

				chunks := 0
				for {
					_, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						log.DebugContext(ctx, "chat model stream ended with error", "error", err)
						return
					}
					chunks++
				}
				log.DebugContext(ctx, "chat model stream finished",
					"component", componentName(info),
					"chunks", chunks)
			}()
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			log.ErrorContext(ctx, "chat model failed", "component", componentName(info), "error", err)
			return ctx
		}).
		Build()
}

// WithCallbacks prepares ctx so chat model calls made outside a compiled
// graph still reach the given handlers.
func WithCallbacks(ctx context.Context, name string, handlers ...callbacks.Handler) context.Context {
	if len(handlers) == 0 {
		return ctx
	}
	return callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      name,
		Component: components.ComponentOfChatModel,
	}, handlers...)
}

func componentName(info *callbacks.RunInfo) string {
	if info == nil {
		return ""
	}
	if info.Name != "" {
		return info.Name
	}
	return string(info.Component)
}
