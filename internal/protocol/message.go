// Package protocol defines the message envelope exchanged between the client
// and the agent mediator, and the newline-delimited JSON framing used to move
// it over a byte stream. One JSON object per line; a line is the atomic unit.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a protocol message. The zero value is invalid.
type Kind int

const (
	KindInvalid Kind = iota

	// Outbound (agent -> client).

	// KindReady announces the mediator is ready for the next prompt.
	KindReady
	// KindChunk carries an incremental fragment of streamed output.
	KindChunk
	// KindConfirmToolRun asks the client for permission to run a tool.
	KindConfirmToolRun
	// KindToolResultOK reports a tool call that completed successfully.
	KindToolResultOK
	// KindToolResultFailed reports a tool call that completed with an error.
	KindToolResultFailed
	// KindToolResultCanceled reports a tool call completed after the turn was
	// canceled by a deny decision.
	KindToolResultCanceled

	// Inbound (client -> agent).

	// KindPrompt submits a prompt for the next turn.
	KindPrompt
	// KindQuit ends the session.
	KindQuit
	// KindAllowToolRun approves a pending tool run.
	KindAllowToolRun
	// KindDenyToolRun denies a pending tool run and cancels the turn.
	KindDenyToolRun
)

var kindToWire = map[Kind]string{
	KindReady:              "ready",
	KindChunk:              "chunk",
	KindConfirmToolRun:     "confirm-tool-run",
	KindToolResultOK:       "tool-result-ok",
	KindToolResultFailed:   "tool-result-failed",
	KindToolResultCanceled: "tool-result-canceled",
	KindPrompt:             "prompt",
	KindQuit:               "quit",
	KindAllowToolRun:       "allow-tool-run",
	KindDenyToolRun:        "deny-tool-run",
}

var wireToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(kindToWire))
	for k, s := range kindToWire {
		m[s] = k
	}
	return m
}()

// String returns the wire string for k, or a placeholder for invalid kinds.
func (k Kind) String() string {
	if s, ok := kindToWire[k]; ok {
		return s
	}
	return fmt.Sprintf("invalid-kind(%d)", int(k))
}

// KindFromWire maps a wire string to its Kind. ok is false for unknown strings.
func KindFromWire(s string) (Kind, bool) {
	k, ok := wireToKind[s]
	return k, ok
}

// Message is the typed envelope exchanged between peers.
//
// Content is empty for ready/quit/allow-tool-run/deny-tool-run and carries the
// payload for all other kinds (prompt text, chunk text, tool description, tool
// name). The payload is opaque at this layer and is not validated.
type Message struct {
	Kind    Kind
	Content string
}

// wireMessage is the JSON shape on the wire.
type wireMessage struct {
	MsgType string `json:"msg_type"`
	Content string `json:"content"`
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	s, ok := kindToWire[m.Kind]
	if !ok {
		return nil, fmt.Errorf("cannot encode message with kind %d", int(m.Kind))
	}
	return json.Marshal(wireMessage{MsgType: s, Content: m.Content})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown msg_type values are
// rejected rather than passed through as free-form strings.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	k, ok := wireToKind[w.MsgType]
	if !ok {
		return fmt.Errorf("unknown msg_type %q", w.MsgType)
	}
	m.Kind = k
	m.Content = w.Content
	return nil
}

// String renders the message for logs.
func (m Message) String() string {
	if m.Content == "" {
		return m.Kind.String()
	}
	return m.Kind.String() + " " + m.Content
}
