// Package transcript persists a session's protocol traffic as an append-only
// JSONL file, one record per message in the order observed.
package transcript

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zeebo/blake3"
)

// Direction labels which peer produced a record.
type Direction string

const (
	// DirIn is client -> agent.
	DirIn Direction = "in"
	// DirOut is agent -> client.
	DirOut Direction = "out"
)

// Record is one transcript line.
type Record struct {
	ID          string    `json:"id"`
	TS          time.Time `json:"ts"`
	Session     string    `json:"session"`
	Dir         Direction `json:"dir"`
	MsgType     string    `json:"msg_type"`
	Content     string    `json:"content,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
}

// Sink appends records to a writer. A nil *Sink is a valid no-op, so callers
// can thread an optional transcript without nil checks at every site.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	session string
}

// NewSink returns a Sink writing to w for the given session ID.
func NewSink(w io.Writer, session string) *Sink {
	return &Sink{w: w, session: session}
}

// Open opens a transcript file at path for appending, creating it if needed.
// Records from an earlier session at the same path are preserved.
func Open(path, session string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	s := NewSink(f, session)
	s.closer = f
	return s, nil
}

// Append writes one record for a message. Content is hashed so transcripts can
// be compared and deduplicated without carrying payloads around.
func (s *Sink) Append(dir Direction, msgType, content string) error {
	if s == nil {
		return nil
	}
	rec := Record{
		ID:      ulid.Make().String(),
		TS:      time.Now().UTC(),
		Session: s.session,
		Dir:     dir,
		MsgType: msgType,
		Content: content,
	}
	if content != "" {
		sum := blake3.Sum256([]byte(content))
		rec.ContentHash = hex.EncodeToString(sum[:])
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(b)
	return err
}

// Close closes the underlying file, if any.
func (s *Sink) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
