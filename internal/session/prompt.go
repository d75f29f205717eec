package session

import (
	"context"
	"fmt"

	"github.com/danshapiro/agentline/internal/protocol"
)

// promptTurn is the state for one prompt: the cancellation flag, the cancel
// function for the engine invocation, and a slot for a transport failure hit
// during the approval rendezvous. It is created when a prompt is accepted and
// discarded when the engine call returns; it is never shared across prompts.
//
// The canceled flag is written and read only from the engine's callback
// context. The engine's one-callback-at-a-time contract serializes that
// access, so no lock is taken.
type promptTurn struct {
	loop   *Loop
	cancel context.CancelFunc

	canceled bool
	readErr  error
}

// runPrompt drives one prompt through the engine, translating the engine's
// callbacks into outbound protocol messages. An engine failure is fatal
// unless the turn was canceled by a deny decision, which is an expected
// outcome and is swallowed.
func (l *Loop) runPrompt(ctx context.Context, prompt string) error {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	turn := &promptTurn{loop: l, cancel: cancel}
	l.log.Debug("prompt turn start", "chars", len(prompt))
	err := l.eng.Invoke(turnCtx, prompt, turn)
	if turn.readErr != nil {
		return fmt.Errorf("reading tool decision: %w", turn.readErr)
	}
	if err != nil && !turn.canceled {
		return fmt.Errorf("engine invocation: %w", err)
	}
	l.log.Debug("prompt turn end", "canceled", turn.canceled)
	return nil
}

// ToolCallRequested implements engine.Callbacks. It emits the confirmation
// request and blocks on the approval gate; the engine does not proceed past
// this call until a decision is known.
func (t *promptTurn) ToolCallRequested(name, args string) {
	if t.loop.policy.AutoApproved(name) {
		t.loop.log.Info("tool run auto-approved", "tool", name)
		return
	}
	desc := fmt.Sprintf("Run tool: %s with args: %s", name, args)
	if err := t.loop.send(protocol.Message{Kind: protocol.KindConfirmToolRun, Content: desc}); err != nil {
		t.loop.log.Error("sending tool confirmation", "error", err)
	}
	t.awaitDecision(name)
}

// awaitDecision is the approval gate: exactly one blocking read of the
// inbound stream. Deny sets the cancellation flag and stops the invocation.
// Any other kind is logged and treated as neither allow nor deny — the engine
// resumes un-canceled and no further reply is awaited.
func (t *promptTurn) awaitDecision(name string) {
	msg, err := t.loop.recv()
	if err != nil {
		// Stream loss while a reply is required is fatal to the session.
		// Stop the engine; runPrompt surfaces the error once it unwinds.
		t.readErr = err
		t.cancel()
		return
	}
	switch msg.Kind {
	case protocol.KindAllowToolRun:
		t.loop.log.Debug("tool run allowed", "tool", name)
	case protocol.KindDenyToolRun:
		t.loop.log.Info("tool run denied", "tool", name)
		t.canceled = true
		t.cancel()
	default:
		t.loop.log.Warn("expected allow or deny", "msg_type", msg.Kind.String(), "tool", name)
	}
}

// ToolCallCompleted implements engine.Callbacks. Exactly one result message
// per completed call. The cancellation flag is read here, at completion time,
// so a deny that lands while a tool is finishing still classifies the result
// deterministically: failed beats canceled beats ok.
func (t *promptTurn) ToolCallCompleted(name, args, result string, isError bool) {
	_ = args
	_ = result
	kind := protocol.KindToolResultOK
	switch {
	case isError:
		kind = protocol.KindToolResultFailed
	case t.canceled:
		kind = protocol.KindToolResultCanceled
	}
	if err := t.loop.send(protocol.Message{Kind: kind, Content: name}); err != nil {
		t.loop.log.Error("sending tool result", "error", err)
	}
}

// ChunkProduced implements engine.Callbacks. Chunks pass through verbatim, in
// the order produced, with no buffering or coalescing.
func (t *promptTurn) ChunkProduced(text string) {
	if err := t.loop.send(protocol.Message{Kind: protocol.KindChunk, Content: text}); err != nil {
		t.loop.log.Error("sending chunk", "error", err)
	}
}
