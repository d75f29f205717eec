// Package engine defines the boundary to the generative agent engine. The
// mediator consumes an engine purely through one invocation entry point and
// three synchronous callback hooks; inference, tool selection, and tool
// execution all live behind this boundary.
package engine

import (
	"context"
	"fmt"
)

// Callbacks receives engine events during a single prompt invocation.
//
// Engines invoke at most one callback at a time per invocation and must not
// proceed past ToolCallRequested until it returns — the mediator relies on
// this to run a blocking approval rendezvous inside that callback.
type Callbacks interface {
	// ToolCallRequested is called before a tool runs. Blocking here blocks
	// the engine's progress on this invocation.
	ToolCallRequested(name, args string)
	// ToolCallCompleted is called exactly once per requested tool call, even
	// when the invocation context has been canceled in the meantime.
	ToolCallCompleted(name, args, result string, isError bool)
	// ChunkProduced is called for each incremental output fragment, in order.
	ChunkProduced(text string)
}

// Engine is a generative agent engine driven one prompt at a time.
type Engine interface {
	// Invoke runs a single prompt to completion. Cancellation of ctx requests
	// that the engine stop; the engine decides when generation actually halts,
	// and in-flight tool completions still surface via Callbacks.
	Invoke(ctx context.Context, prompt string, cb Callbacks) error
	// Close releases the engine's underlying resources.
	Close() error
}

// Kind selects an engine implementation.
type Kind string

const (
	// KindEcho streams the prompt back as chunks. Default.
	KindEcho Kind = "echo"
	// KindScripted replays a canned step list from configuration.
	KindScripted Kind = "scripted"
)

// ParseKind validates a configured engine kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEcho, KindScripted:
		return Kind(s), nil
	case "":
		return KindEcho, nil
	default:
		return "", fmt.Errorf("unknown engine kind %q", s)
	}
}
