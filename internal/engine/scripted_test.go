package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

// recorder captures callback invocations as readable trace lines.
type recorder struct {
	trace  []string
	cancel context.CancelFunc

	// cancelOnRequest cancels the invocation from inside ToolCallRequested,
	// mimicking a denied approval gate.
	cancelOnRequest bool
}

func (r *recorder) ToolCallRequested(name, args string) {
	r.trace = append(r.trace, fmt.Sprintf("request %s %s", name, args))
	if r.cancelOnRequest && r.cancel != nil {
		r.cancel()
	}
}

func (r *recorder) ToolCallCompleted(name, args, result string, isError bool) {
	r.trace = append(r.trace, fmt.Sprintf("complete %s err=%t", name, isError))
}

func (r *recorder) ChunkProduced(text string) {
	r.trace = append(r.trace, "chunk "+text)
}

func TestScripted_PlaysStepsInOrder(t *testing.T) {
	eng := NewScripted([]Step{
		{Type: StepChunk, Text: "a"},
		{Type: StepToolCall, ToolName: "search", ToolArgs: "{}", Result: "hits"},
		{Type: StepChunk, Text: "b"},
	})
	rec := &recorder{}
	if err := eng.Invoke(context.Background(), "prompt", rec); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := []string{
		"chunk a",
		"request search {}",
		"complete search err=false",
		"chunk b",
	}
	if len(rec.trace) != len(want) {
		t.Fatalf("trace: got %v, want %v", rec.trace, want)
	}
	for i := range want {
		if rec.trace[i] != want[i] {
			t.Fatalf("trace[%d]: got %q, want %q", i, rec.trace[i], want[i])
		}
	}
}

func TestScripted_CancelDuringToolStillCompletesThatCall(t *testing.T) {
	eng := NewScripted([]Step{
		{Type: StepToolCall, ToolName: "search", ToolArgs: "{}", Result: "hits"},
		{Type: StepChunk, Text: "never"},
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{cancel: cancel, cancelOnRequest: true}

	err := eng.Invoke(ctx, "prompt", rec)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	want := []string{
		"request search {}",
		"complete search err=false",
	}
	if len(rec.trace) != len(want) {
		t.Fatalf("trace: got %v, want %v", rec.trace, want)
	}
	for i := range want {
		if rec.trace[i] != want[i] {
			t.Fatalf("trace[%d]: got %q, want %q", i, rec.trace[i], want[i])
		}
	}
}

func TestScripted_UnknownStepType(t *testing.T) {
	eng := NewScripted([]Step{{Type: StepType("bogus")}})
	if err := eng.Invoke(context.Background(), "p", &recorder{}); err == nil {
		t.Fatal("expected error for unknown step type")
	}
}

func TestEcho_StreamsPromptBack(t *testing.T) {
	eng := NewEcho()
	rec := &recorder{}
	prompt := "this prompt is longer than one echo chunk for sure"
	if err := eng.Invoke(context.Background(), prompt, rec); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(rec.trace) < 2 {
		t.Fatalf("expected multiple chunks, got %v", rec.trace)
	}
	joined := ""
	for _, line := range rec.trace {
		if len(line) < len("chunk ") || line[:len("chunk ")] != "chunk " {
			t.Fatalf("unexpected trace entry %q", line)
		}
		joined += line[len("chunk "):]
	}
	if joined != prompt {
		t.Fatalf("chunks reassemble to %q, want %q", joined, prompt)
	}
}

func TestEcho_ChunksOnRuneBoundaries(t *testing.T) {
	// 18 bytes of 3-byte runes: a byte-offset split at 16 would cut the
	// sixth rune in half.
	prompt := strings.Repeat("☃", 6)
	eng := NewEcho()
	rec := &recorder{}
	if err := eng.Invoke(context.Background(), prompt, rec); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(rec.trace) < 2 {
		t.Fatalf("expected multiple chunks, got %v", rec.trace)
	}
	joined := ""
	for _, line := range rec.trace {
		chunk := strings.TrimPrefix(line, "chunk ")
		if chunk == line {
			t.Fatalf("unexpected trace entry %q", line)
		}
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %q is not valid UTF-8", chunk)
		}
		joined += chunk
	}
	if joined != prompt {
		t.Fatalf("chunks reassemble to %q, want %q", joined, prompt)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindEcho, false},
		{"echo", KindEcho, false},
		{"scripted", KindScripted, false},
		{"llm", "", true},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseKind(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
