package emitter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/captionlabs/caption-core/internal/config"
	"github.com/captionlabs/caption-core/internal/eventstore"
	"github.com/captionlabs/caption-core/internal/protocol"
	"github.com/captionlabs/caption-core/internal/session"
)

func secs(v float64) *float64 { return &v }

func TestWriterJSONFieldPresence(t *testing.T) {
	cases := []struct {
		name    string
		ev      session.Event
		want    string
		forbid  []string
		require []string
	}{
		{
			name:    "ready",
			ev:      session.Event{AudioDurationSecs: secs(0)},
			want:    `{"text":"","is_final":false,"audio_duration_secs":0}`,
			forbid:  []string{`"duration_secs"`, "timestamps", "error"},
			require: []string{`"audio_duration_secs":0`},
		},
		{
			name:   "partial",
			ev:     session.Event{Text: "hel", AudioDurationSecs: secs(1.5)},
			forbid: []string{"timestamps", "error", `"duration_secs"`},
			require: []string{
				`"text":"hel"`,
				`"is_final":false`,
				`"audio_duration_secs":1.5`,
			},
		},
		{
			name: "final success",
			ev: session.Event{
				Text:              "hello",
				Final:             true,
				DurationSecs:      secs(0.12),
				AudioDurationSecs: secs(2),
				Timestamps:        []session.TimedWord{{Word: "hello", Start: 0, End: 0.4}},
			},
			require: []string{
				`"is_final":true`,
				`"duration_secs":0.12`,
				`"audio_duration_secs":2`,
				`"timestamps":[{"word":"hello","start":0,"end":0.4}]`,
			},
		},
		{
			name:    "final empty input",
			ev:      session.Event{Final: true, DurationSecs: secs(0), AudioDurationSecs: secs(0)},
			want:    `{"text":"","is_final":true,"duration_secs":0,"audio_duration_secs":0}`,
			forbid:  []string{"timestamps", "error"},
			require: nil,
		},
		{
			name:    "final fallback",
			ev:      session.Event{Text: "last good", Final: true},
			want:    `{"text":"last good","is_final":true}`,
			forbid:  []string{"duration_secs", "audio_duration_secs", "timestamps"},
			require: nil,
		},
		{
			name:    "final error terminal",
			ev:      session.Event{Final: true, Error: "engine crashed"},
			require: []string{`"error":"engine crashed"`, `"is_final":true`},
			forbid:  []string{"duration_secs", "timestamps"},
		},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		w := NewWriter(&buf, "json")
		if err := w.Emit(tc.ev); err != nil {
			t.Fatalf("%s: emit: %v", tc.name, err)
		}
		line := strings.TrimSuffix(buf.String(), "\n")
		if tc.want != "" && line != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, line)
		}
		for _, substr := range tc.require {
			if !strings.Contains(line, substr) {
				t.Fatalf("%s: expected %s in %s", tc.name, substr, line)
			}
		}
		for _, substr := range tc.forbid {
			if strings.Contains(line, substr) {
				t.Fatalf("%s: did not expect %s in %s", tc.name, substr, line)
			}
		}
	}
}

func TestWriterTextMode(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "text")
	if err := w.Emit(session.Event{Text: "hello world", Final: true}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if buf.String() != "hello world\n" {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

type recordingSink struct {
	events []session.Event
}

func (r *recordingSink) Emit(ev session.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestMultiFansOutInOrder(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMulti(a)
	m.Add(b)

	events := []session.Event{
		{AudioDurationSecs: secs(0)},
		{Text: "partial", AudioDurationSecs: secs(1)},
		{Text: "final", Final: true},
	}
	for _, ev := range events {
		if err := m.Emit(ev); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	if len(a.events) != 3 || len(b.events) != 3 {
		t.Fatalf("expected all sinks to see 3 events, got %d and %d", len(a.events), len(b.events))
	}
	for i := range events {
		if a.events[i].Text != events[i].Text || b.events[i].Text != events[i].Text {
			t.Fatalf("event %d delivered out of order", i)
		}
	}
}

func TestStoreSinkRecordsEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.StoreConfig{Path: filepath.Join(t.TempDir(), "transcripts.db"), RetentionMode: "session"}
	store, err := eventstore.Open(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.AppendSession(context.Background(), "sess-1", "stdin"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	sink := NewStoreSink(context.Background(), store, "sess-1", logger)
	if err := sink.Emit(session.Event{Text: "partial", AudioDurationSecs: secs(1.5)}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := sink.Emit(session.Event{Text: "final", Final: true, AudioDurationSecs: secs(2)}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	rows, err := store.ListSessionTranscripts(context.Background(), "sess-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[1].Final || rows[1].Text != "final" {
		t.Fatalf("unexpected final row %+v", rows[1])
	}
}

func TestSubjectSelection(t *testing.T) {
	if got := subjectFor(session.Event{AudioDurationSecs: secs(0)}); got != protocol.SubjectSessionReady {
		t.Fatalf("expected ready subject, got %s", got)
	}
	if got := subjectFor(session.Event{Text: "hi", AudioDurationSecs: secs(1)}); got != protocol.SubjectTranscriptPartial {
		t.Fatalf("expected partial subject, got %s", got)
	}
	if got := subjectFor(session.Event{Text: "done", Final: true}); got != protocol.SubjectTranscriptFinal {
		t.Fatalf("expected final subject, got %s", got)
	}
}
