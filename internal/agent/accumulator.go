package agent

import (
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ToolCallAccumulator rebuilds a streamed assistant message. Tool call
// fragments are merged by index and only handed out after Complete.
type ToolCallAccumulator struct {
	content  strings.Builder
	calls    map[int]*schema.ToolCall
	order    []int
	complete bool
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{calls: make(map[int]*schema.ToolCall)}
}

// Add merges one stream chunk. Fragments without an index belong to the
// most recent call, or start call 0.
func (a *ToolCallAccumulator) Add(chunk *schema.Message) {
	if chunk == nil {
		return
	}
	a.content.WriteString(chunk.Content)

	for _, frag := range chunk.ToolCalls {
		idx := a.indexOf(frag)
		call, ok := a.calls[idx]
		if !ok {
			i := idx
			call = &schema.ToolCall{Index: &i, Type: "function"}
			a.calls[idx] = call
			a.order = append(a.order, idx)
		}
		if frag.ID != "" {
			call.ID = frag.ID
		}
		if frag.Type != "" {
			call.Type = frag.Type
		}
		call.Function.Name += frag.Function.Name
		call.Function.Arguments += frag.Function.Arguments
	}
}

func (a *ToolCallAccumulator) indexOf(frag schema.ToolCall) int {
	if frag.Index != nil {
		return *frag.Index
	}
	if len(a.order) > 0 {
		return a.order[len(a.order)-1]
	}
	return 0
}

// Complete marks the end of the stream.
func (a *ToolCallAccumulator) Complete() {
	a.complete = true
}

// Content returns the text received so far.
func (a *ToolCallAccumulator) Content() string {
	return a.content.String()
}

// Calls returns the merged tool calls ordered by index.
func (a *ToolCallAccumulator) Calls() ([]schema.ToolCall, error) {
	if !a.complete {
		return nil, ErrIncompleteToolCall
	}

	idx := append([]int(nil), a.order...)
	sort.Ints(idx)

	calls := make([]schema.ToolCall, 0, len(idx))
	for _, i := range idx {
		calls = append(calls, *a.calls[i])
	}
	return calls, nil
}

// Message returns the rebuilt assistant message.
func (a *ToolCallAccumulator) Message() (*schema.Message, error) {
	calls, err := a.Calls()
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		calls = nil
	}
	return &schema.Message{
		Role:      schema.Assistant,
		Content:   a.Content(),
		ToolCalls: calls,
	}, nil
}
