package engine

import (
	"context"
	"unicode/utf8"
)

// echoChunkSize keeps echoed output visibly incremental.
const echoChunkSize = 16

// Echo streams the prompt text back in small chunks. It performs no tool
// calls, which makes it a safe default backend for wiring up a client.
type Echo struct{}

// NewEcho returns an Echo engine.
func NewEcho() *Echo { return &Echo{} }

// Invoke implements Engine. Chunks are split on rune boundaries so a
// multi-byte rune is never divided across two chunks.
func (e *Echo) Invoke(ctx context.Context, prompt string, cb Callbacks) error {
	for i := 0; i < len(prompt); {
		if err := ctx.Err(); err != nil {
			return err
		}
		j := i + echoChunkSize
		if j >= len(prompt) {
			j = len(prompt)
		} else {
			for j > i && !utf8.RuneStart(prompt[j]) {
				j--
			}
			if j == i {
				// Not valid UTF-8; fall back to the raw cut.
				j = i + echoChunkSize
			}
		}
		cb.ChunkProduced(prompt[i:j])
		i = j
	}
	return ctx.Err()
}

// Close implements Engine.
func (e *Echo) Close() error { return nil }
