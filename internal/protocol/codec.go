package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
)

// Decoder frames discrete messages out of a streamed byte pipe. Partial lines
// spanning multiple reads are carried over internally; a malformed line is a
// soft failure that is logged and dropped, never a stream error.
type Decoder struct {
	r   *bufio.Reader
	log *slog.Logger
}

// NewDecoder returns a Decoder reading newline-delimited JSON from r.
func NewDecoder(r io.Reader, log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{
		r:   bufio.NewReaderSize(r, 64*1024),
		log: log,
	}
}

// Next blocks until a complete, well-formed message is read. Empty lines and
// undecodable lines are skipped. A partial line at EOF (no trailing newline)
// is discarded, not surfaced as a message; Next returns io.EOF in that case.
func (d *Decoder) Next() (Message, error) {
	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(bytes.TrimSpace(line)) > 0 {
				d.log.Warn("discarding partial line at stream end", "bytes", len(line))
			}
			return Message{}, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			d.log.Warn("dropping undecodable line", "error", err)
			continue
		}
		return msg, nil
	}
}

// Encoder writes one message per line. Every Encode is written through
// immediately; there is no buffering across messages.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing newline-delimited JSON to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode marshals msg and writes it followed by exactly one newline.
func (e *Encoder) Encode(msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = e.w.Write(b)
	return err
}
