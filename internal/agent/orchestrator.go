package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/RedditLens/consts"
	"github.com/dyike/RedditLens/internal/llm"
	"github.com/dyike/RedditLens/internal/utils"
)

// DeltaFunc receives answer text as it streams in. Returning an error stops
// the request.
type DeltaFunc func(delta string) error

// Orchestrator drives the function-calling conversation for one prompt at a
// time. It holds no per-request state, so one instance serves concurrent
// requests.
type Orchestrator struct {
	chat       model.ToolCallingChatModel
	toolTurn   model.ToolCallingChatModel
	filterTurn model.ToolCallingChatModel

	tools           map[string]tool.InvokableTool
	systemPrompt    string
	sentimentFilter bool
	handlers        []callbacks.Handler

	graph compose.Runnable[*request, *request]
}

type Option func(*Orchestrator)

// WithSentimentFilter adds the forced filter turn after every search.
// The filter_reddit_posts tool must be registered.
func WithSentimentFilter(enabled bool) Option {
	return func(o *Orchestrator) {
		o.sentimentFilter = enabled
	}
}

// WithSystemPrompt overrides the embedded analyst prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) {
		o.systemPrompt = prompt
	}
}

func WithCallbackHandlers(handlers ...callbacks.Handler) Option {
	return func(o *Orchestrator) {
		o.handlers = append(o.handlers, handlers...)
	}
}

// New binds tools to chat and compiles the answer graph. The bare chat
// model is kept for the final, tool-free summary turn.
func New(ctx context.Context, chat model.ToolCallingChatModel, tools []tool.InvokableTool, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		chat:  chat,
		tools: make(map[string]tool.InvokableTool, len(tools)),
	}
	for _, opt := range opts {
		opt(o)
	}

	infos := make([]*schema.ToolInfo, 0, len(tools))
	var filterInfo *schema.ToolInfo
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tool info: %w", err)
		}
		o.tools[info.Name] = t
		infos = append(infos, info)
		if info.Name == consts.ToolFilterRedditPosts {
			filterInfo = info
		}
	}

	toolTurn, err := chat.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	o.toolTurn = toolTurn

	if o.sentimentFilter {
		if filterInfo == nil {
			return nil, fmt.Errorf("sentiment filter enabled but %s is not registered", consts.ToolFilterRedditPosts)
		}
		filterTurn, err := chat.WithTools([]*schema.ToolInfo{filterInfo})
		if err != nil {
			return nil, fmt.Errorf("failed to bind filter tool: %w", err)
		}
		o.filterTurn = filterTurn
	}

	if o.systemPrompt == "" {
		prompt, err := DefaultSystemPrompt(o.sentimentFilter)
		if err != nil {
			return nil, err
		}
		o.systemPrompt = prompt
	}

	graph, err := o.buildGraph(ctx)
	if err != nil {
		return nil, err
	}
	o.graph = graph

	return o, nil
}

// DefaultSystemPrompt renders the embedded analyst prompt, with the filter
// instructions appended when the filter turn is enabled.
func DefaultSystemPrompt(sentimentFilter bool) (string, error) {
	prompt, err := utils.LoadPromptWithContext("reddit_analyst", map[string]string{
		"SearchTool": consts.ToolSearchRedditPosts,
	})
	if err != nil {
		return "", err
	}
	if !sentimentFilter {
		return prompt, nil
	}

	filterPrompt, err := utils.LoadPromptWithContext("sentiment_filter", map[string]string{
		"FilterTool": consts.ToolFilterRedditPosts,
	})
	if err != nil {
		return "", err
	}
	return prompt + "\n\n" + filterPrompt, nil
}

// Run answers prompt with batch completions.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (string, error) {
	return o.run(ctx, prompt, nil)
}

// Stream answers prompt with streamed completions, forwarding answer text
// to onDelta as it arrives. The text onDelta sees is exactly the returned
// answer.
func (o *Orchestrator) Stream(ctx context.Context, prompt string, onDelta DeltaFunc) (string, error) {
	if onDelta == nil {
		onDelta = func(string) error { return nil }
	}
	return o.run(ctx, prompt, onDelta)
}

func (o *Orchestrator) run(ctx context.Context, prompt string, onDelta DeltaFunc) (string, error) {
	start := time.Now()
	req := &request{
		conv:    NewConversation(o.systemPrompt, prompt),
		onDelta: onDelta,
	}

	if _, err := o.graph.Invoke(ctx, req); err != nil {
		if req.err != nil {
			return "", req.err
		}
		return "", err
	}

	slog.InfoContext(ctx, "answered",
		"state", req.state,
		"tool", req.call.Function.Name,
		"messages", req.conv.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return req.answer, nil
}

// turn sends the conversation to cm once. With onDelta set the reply is
// streamed and text fragments are forwarded as they arrive; tool call
// fragments are buffered until the stream ends.
func (o *Orchestrator) turn(ctx context.Context, cm model.BaseChatModel, conv *Conversation, onDelta DeltaFunc, opts ...model.Option) (*schema.Message, error) {
	ctx = llm.WithCallbacks(ctx, "reddit-analyst", o.handlers...)
	if onDelta == nil {
		msg, err := cm.Generate(ctx, conv.Messages(), opts...)
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		return msg, nil
	}

	sr, err := cm.Stream(ctx, conv.Messages(), opts...)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	defer sr.Close()

	acc := NewToolCallAccumulator()
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chat stream failed: %w", err)
		}
		acc.Add(chunk)
		if chunk.Content != "" {
			if err := onDelta(chunk.Content); err != nil {
				return nil, err
			}
		}
	}
	acc.Complete()

	return acc.Message()
}

// silent keeps the streaming mode of onDelta but drops the text.
func silent(onDelta DeltaFunc) DeltaFunc {
	if onDelta == nil {
		return nil
	}
	return func(string) error { return nil }
}

// invoke runs the tool named by call and records the exchange.
func (o *Orchestrator) invoke(ctx context.Context, conv *Conversation, content string, call schema.ToolCall) error {
	name := call.Function.Name
	t, ok := o.tools[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	var args map[string]json.RawMessage
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil || args == nil {
		return fmt.Errorf("%w: %s: %q", ErrMalformedArguments, name, call.Function.Arguments)
	}

	start := time.Now()
	out, err := t.InvokableRun(ctx, call.Function.Arguments)
	if err != nil {
		return fmt.Errorf("tool %s failed: %w", name, err)
	}
	slog.DebugContext(ctx, "tool executed",
		"tool", name,
		"call_id", call.ID,
		"result_bytes", len(out),
		"duration_ms", time.Since(start).Milliseconds())

	conv.Append(
		&schema.Message{
			Role:      schema.Assistant,
			Content:   content,
			ToolCalls: []schema.ToolCall{call},
		},
		schema.ToolMessage(out, call.ID),
	)
	return nil
}
