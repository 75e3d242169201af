package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/RedditLens/consts"
)

// request carries one prompt through the answer graph.
type request struct {
	conv    *Conversation
	onDelta DeltaFunc

	decision *schema.Message
	call     schema.ToolCall
	answer   string
	state    string

	// err keeps the failing step's error unwrapped for the caller.
	err error
}

func (r *request) enter(ctx context.Context, state string, args ...any) {
	r.state = state
	slog.DebugContext(ctx, "orchestrator state", append([]any{"state", state}, args...)...)
}

// buildGraph wires decide -> execute_tool -> [forced_filter] -> finalize.
// A decision without tool calls ends the graph with the direct answer.
func (o *Orchestrator) buildGraph(ctx context.Context) (compose.Runnable[*request, *request], error) {
	g := compose.NewGraph[*request, *request]()

	_ = g.AddLambdaNode(consts.NodeDecide, o.step(o.decide), compose.WithNodeName(consts.NodeDecide))
	_ = g.AddLambdaNode(consts.NodeExecuteTool, o.step(o.executeTool), compose.WithNodeName(consts.NodeExecuteTool))
	_ = g.AddLambdaNode(consts.NodeForcedFilter, o.step(o.forcedFilter), compose.WithNodeName(consts.NodeForcedFilter))
	_ = g.AddLambdaNode(consts.NodeFinalize, o.step(o.finalize), compose.WithNodeName(consts.NodeFinalize))

	_ = g.AddEdge(compose.START, consts.NodeDecide)
	_ = g.AddBranch(consts.NodeDecide, compose.NewGraphBranch(decisionHandOff, map[string]bool{
		consts.NodeExecuteTool: true,
		compose.END:            true,
	}))
	_ = g.AddBranch(consts.NodeExecuteTool, compose.NewGraphBranch(o.filterHandOff, map[string]bool{
		consts.NodeForcedFilter: true,
		consts.NodeFinalize:     true,
	}))
	_ = g.AddEdge(consts.NodeForcedFilter, consts.NodeFinalize)
	_ = g.AddEdge(consts.NodeFinalize, compose.END)

	r, err := g.Compile(ctx,
		compose.WithGraphName(consts.GraphName),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile answer graph: %w", err)
	}
	return r, nil
}

func (o *Orchestrator) step(fn func(ctx context.Context, req *request) error) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, req *request) (*request, error) {
		if err := fn(ctx, req); err != nil {
			req.err = err
			return nil, err
		}
		return req, nil
	})
}

func decisionHandOff(_ context.Context, req *request) (string, error) {
	if len(req.decision.ToolCalls) == 0 {
		return compose.END, nil
	}
	return consts.NodeExecuteTool, nil
}

func (o *Orchestrator) filterHandOff(_ context.Context, req *request) (string, error) {
	if o.sentimentFilter && req.call.Function.Name == consts.ToolSearchRedditPosts {
		return consts.NodeForcedFilter, nil
	}
	return consts.NodeFinalize, nil
}

// decide lets the model pick a tool or answer directly. Streamed text is
// held back until the turn is known to be the answer, so a preamble before
// a tool call never reaches the reader.
func (o *Orchestrator) decide(ctx context.Context, req *request) error {
	req.enter(ctx, consts.StateInit, "streaming", req.onDelta != nil)

	msg, err := o.turn(ctx, o.toolTurn, req.conv, silent(req.onDelta), model.WithToolChoice(schema.ToolChoiceAllowed))
	if err != nil {
		return err
	}
	req.decision = msg
	req.enter(ctx, consts.StateAwaitToolDecision, "tool_calls", len(msg.ToolCalls))

	if len(msg.ToolCalls) > 0 {
		return nil
	}
	if req.onDelta != nil && msg.Content != "" {
		if err := req.onDelta(msg.Content); err != nil {
			return err
		}
	}
	req.answer = msg.Content
	req.enter(ctx, consts.StateDone)
	return nil
}

func (o *Orchestrator) executeTool(ctx context.Context, req *request) error {
	msg := req.decision
	if len(msg.ToolCalls) > 1 {
		slog.WarnContext(ctx, "model requested several tool calls, servicing the first", "count", len(msg.ToolCalls))
	}

	req.call = msg.ToolCalls[0]
	if err := o.invoke(ctx, req.conv, msg.Content, req.call); err != nil {
		return err
	}
	req.enter(ctx, consts.StateToolExecuted, "tool", req.call.Function.Name)
	return nil
}

func (o *Orchestrator) forcedFilter(ctx context.Context, req *request) error {
	req.enter(ctx, consts.StateAwaitFilterDecision)

	msg, err := o.turn(ctx, o.filterTurn, req.conv, silent(req.onDelta), model.WithToolChoice(schema.ToolChoiceForced))
	if err != nil {
		return err
	}
	if len(msg.ToolCalls) == 0 {
		return fmt.Errorf("%w: %s", ErrToolNotCalled, consts.ToolFilterRedditPosts)
	}
	call := msg.ToolCalls[0]
	if call.Function.Name != consts.ToolFilterRedditPosts {
		return fmt.Errorf("%w: %q during the filter turn", ErrUnknownTool, call.Function.Name)
	}
	if err := o.invoke(ctx, req.conv, msg.Content, call); err != nil {
		return err
	}
	req.call = call
	return nil
}

func (o *Orchestrator) finalize(ctx context.Context, req *request) error {
	req.enter(ctx, consts.StateFinalize, "messages", req.conv.Len())

	msg, err := o.turn(ctx, o.chat, req.conv, req.onDelta)
	if err != nil {
		return err
	}
	req.answer = msg.Content
	req.enter(ctx, consts.StateDone)
	return nil
}
