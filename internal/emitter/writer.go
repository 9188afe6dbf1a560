// Package emitter provides the event sinks a session writes to: the primary
// stdout stream plus optional bus and store mirrors.
package emitter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/captionlabs/caption-core/internal/session"
)

// Writer renders events to a stream, one per line, unbuffered so each event
// reaches the consumer before the session reads more input.
type Writer struct {
	w      io.Writer
	format string
}

// NewWriter creates a writer sink. format is "json" (JSONL) or "text"
// (hypothesis text only).
func NewWriter(w io.Writer, format string) *Writer {
	return &Writer{w: w, format: format}
}

func (e *Writer) Emit(ev session.Event) error {
	if e.format == "text" {
		if _, err := fmt.Fprintln(e.w, ev.Text); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "%s\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
