// Package session implements the turn-based control loop that mediates
// between a client on a duplex byte stream and a generative agent engine:
// readiness/prompt/quit turn-taking, incremental chunk forwarding, and the
// synchronous tool-approval gate.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/danshapiro/agentline/internal/approval"
	"github.com/danshapiro/agentline/internal/engine"
	"github.com/danshapiro/agentline/internal/protocol"
	"github.com/danshapiro/agentline/internal/transcript"
)

// State is the loop's turn cursor.
type State int

const (
	// StateAwaitingTurn means no ready has been sent for the next turn yet.
	StateAwaitingTurn State = iota
	// StateReadingDecision means a ready is outstanding and the loop is
	// waiting for a prompt or quit.
	StateReadingDecision
	// StateTerminated means the session ended cleanly on a quit.
	StateTerminated
)

// Loop owns the frame codec and drives one prompt turn at a time. A single
// Loop serves a single byte-stream connection; it is not safe for concurrent
// Run calls.
type Loop struct {
	id     string
	dec    *protocol.Decoder
	enc    *protocol.Encoder
	eng    engine.Engine
	policy *approval.Policy
	sink   *transcript.Sink
	log    *slog.Logger

	state State
}

// NewLoop builds a session loop over the given duplex stream. policy and sink
// may be nil (no auto-approval, no transcript).
func NewLoop(r io.Reader, w io.Writer, eng engine.Engine, policy *approval.Policy, sink *transcript.Sink, log *slog.Logger) (*Loop, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is nil")
	}
	if w == nil {
		return nil, fmt.Errorf("writer is nil")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	id := ulid.Make().String()
	log = log.With("session", id)
	return &Loop{
		id:     id,
		dec:    protocol.NewDecoder(r, log),
		enc:    protocol.NewEncoder(w),
		eng:    eng,
		policy: policy,
		sink:   sink,
		log:    log,
	}, nil
}

// ID returns the session identifier used in logs and transcript records.
func (l *Loop) ID() string { return l.id }

// SetTranscript attaches a transcript sink. Must be called before Run.
func (l *Loop) SetTranscript(sink *transcript.Sink) { l.sink = sink }

// State returns the current turn cursor.
func (l *Loop) State() State { return l.state }

// Run announces readiness, accepts prompts, and repeats until the client
// quits. A read error or EOF while a reply is required is fatal and is
// returned; the engine is closed before returning on every path. Readiness is
// sent exactly once per turn: an unexpected message kind is logged and the
// loop re-reads without resending ready.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		if err := l.eng.Close(); err != nil {
			l.log.Warn("closing engine", "error", err)
		}
	}()

	for {
		l.state = StateAwaitingTurn
		if err := l.send(protocol.Message{Kind: protocol.KindReady}); err != nil {
			return fmt.Errorf("sending ready: %w", err)
		}
		l.state = StateReadingDecision

	decision:
		for {
			msg, err := l.recv()
			if err != nil {
				return fmt.Errorf("reading turn decision: %w", err)
			}
			switch msg.Kind {
			case protocol.KindQuit:
				l.state = StateTerminated
				l.log.Info("session terminated by client")
				return nil
			case protocol.KindPrompt:
				if err := l.runPrompt(ctx, msg.Content); err != nil {
					return err
				}
				break decision
			default:
				// Protocol leniency: stay in the same state, the
				// outstanding ready still stands.
				l.log.Warn("expected prompt or quit", "msg_type", msg.Kind.String())
			}
		}
	}
}

func (l *Loop) send(msg protocol.Message) error {
	if err := l.enc.Encode(msg); err != nil {
		return err
	}
	l.log.Debug("sent", "msg", msg.String())
	if err := l.sink.Append(transcript.DirOut, msg.Kind.String(), msg.Content); err != nil {
		l.log.Warn("transcript append", "error", err)
	}
	return nil
}

func (l *Loop) recv() (protocol.Message, error) {
	msg, err := l.dec.Next()
	if err != nil {
		return protocol.Message{}, err
	}
	l.log.Debug("received", "msg", msg.String())
	if err := l.sink.Append(transcript.DirIn, msg.Kind.String(), msg.Content); err != nil {
		l.log.Warn("transcript append", "error", err)
	}
	return msg, nil
}
