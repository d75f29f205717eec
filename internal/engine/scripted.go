package engine

import (
	"context"
	"fmt"
)

// StepType discriminates scripted steps.
type StepType string

const (
	// StepChunk emits one output chunk.
	StepChunk StepType = "chunk"
	// StepToolCall runs one tool round-trip with a canned result.
	StepToolCall StepType = "tool_call"
)

// Step is one scripted engine action.
type Step struct {
	Type StepType

	// Text is the chunk payload for StepChunk.
	Text string

	// Tool fields for StepToolCall.
	ToolName string
	ToolArgs string
	Result   string
	IsError  bool
}

// Scripted replays a fixed step list through the callback hooks. It is the
// deterministic engine used by tests and demos: every chunk, tool request, and
// tool completion is known up front, so protocol traces are reproducible.
type Scripted struct {
	steps []Step
}

// NewScripted returns an engine that plays steps in order on each Invoke.
func NewScripted(steps []Step) *Scripted {
	return &Scripted{steps: steps}
}

// Invoke implements Engine. After a tool's ToolCallRequested returns with the
// invocation canceled, the completion callback for that tool still fires (the
// call is considered in flight), and Invoke then returns the context error.
func (s *Scripted) Invoke(ctx context.Context, prompt string, cb Callbacks) error {
	_ = prompt
	for _, st := range s.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch st.Type {
		case StepChunk:
			cb.ChunkProduced(st.Text)
		case StepToolCall:
			cb.ToolCallRequested(st.ToolName, st.ToolArgs)
			cb.ToolCallCompleted(st.ToolName, st.ToolArgs, st.Result, st.IsError)
		default:
			return fmt.Errorf("scripted engine: unknown step type %q", st.Type)
		}
	}
	return ctx.Err()
}

// Close implements Engine.
func (s *Scripted) Close() error { return nil }
