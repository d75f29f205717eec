package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestKind_WireRoundTrip(t *testing.T) {
	for k, wire := range kindToWire {
		got, ok := KindFromWire(wire)
		if !ok {
			t.Fatalf("KindFromWire(%q) not ok", wire)
		}
		if got != k {
			t.Fatalf("KindFromWire(%q) = %v, want %v", wire, got, k)
		}
		if k.String() != wire {
			t.Fatalf("(%v).String() = %q, want %q", k, k.String(), wire)
		}
	}
}

func TestKindFromWire_Unknown(t *testing.T) {
	if _, ok := KindFromWire("definitely-not-a-kind"); ok {
		t.Fatal("unknown wire string should not map to a kind")
	}
	if _, ok := KindFromWire(""); ok {
		t.Fatal("empty wire string should not map to a kind")
	}
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	cases := []Message{
		{Kind: KindReady},
		{Kind: KindQuit},
		{Kind: KindAllowToolRun},
		{Kind: KindDenyToolRun},
		{Kind: KindPrompt, Content: "hello there"},
		{Kind: KindChunk, Content: "par\ntial"},
		{Kind: KindConfirmToolRun, Content: `Run tool: search with args: q="x"`},
		{Kind: KindToolResultOK, Content: "search"},
		{Kind: KindToolResultFailed, Content: "search"},
		{Kind: KindToolResultCanceled, Content: "search"},
	}
	for _, want := range cases {
		b, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %v: %v", want, err)
		}
		var got Message
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if got != want {
			t.Fatalf("round trip: got %+v, want %+v", got, want)
		}
	}
}

func TestMessage_WireShape(t *testing.T) {
	b, err := json.Marshal(Message{Kind: KindPrompt, Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"msg_type":"prompt","content":"hi"}`
	if string(b) != want {
		t.Fatalf("wire shape: got %s, want %s", b, want)
	}
}

func TestMessage_UnmarshalUnknownKind(t *testing.T) {
	var m Message
	err := json.Unmarshal([]byte(`{"msg_type":"error","content":"boom"}`), &m)
	if err == nil {
		t.Fatal("expected error for unknown msg_type")
	}
	if !strings.Contains(err.Error(), "unknown msg_type") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMessage_MarshalInvalidKind(t *testing.T) {
	if _, err := json.Marshal(Message{Kind: KindInvalid}); err == nil {
		t.Fatal("expected error marshaling invalid kind")
	}
}

func TestMessage_String(t *testing.T) {
	if got := (Message{Kind: KindReady}).String(); got != "ready" {
		t.Fatalf("got %q", got)
	}
	if got := (Message{Kind: KindPrompt, Content: "hi"}).String(); got != "prompt hi" {
		t.Fatalf("got %q", got)
	}
}
