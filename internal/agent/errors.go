package agent

import "errors"

var (
	// ErrMalformedArguments is returned when the model sends tool arguments
	// that are not a JSON object.
	ErrMalformedArguments = errors.New("malformed tool arguments")
	// ErrUnknownTool is returned when the model calls a tool that is not bound.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrToolNotCalled is returned when a turn with a forced tool choice comes
	// back without a tool call.
	ErrToolNotCalled = errors.New("model did not call the required tool")
	// ErrIncompleteToolCall is returned when tool calls are read from a
	// ToolCallAccumulator before its stream finished.
	ErrIncompleteToolCall = errors.New("tool call stream not complete")
)
