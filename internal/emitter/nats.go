package emitter

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/captionlabs/caption-core/internal/bus"
	"github.com/captionlabs/caption-core/internal/protocol"
	"github.com/captionlabs/caption-core/internal/session"
)

// Bus mirrors session events onto NATS subjects. Publish failures are logged
// and never surfaced: losing a bus mirror must not end a live captioning
// session.
type Bus struct {
	client    *bus.Client
	sessionID string
	log       *slog.Logger
	clock     func() time.Time
}

func NewBus(client *bus.Client, sessionID string) *Bus {
	return &Bus{
		client:    client,
		sessionID: sessionID,
		log:       client.Logger().With("component", "bus-emitter"),
		clock:     time.Now,
	}
}

func (e *Bus) Emit(ev session.Event) error {
	msg := protocol.Transcript{
		SessionID: e.sessionID,
		Text:      ev.Text,
		Final:     ev.Final,
		Error:     ev.Error,
		Timestamp: e.clock().UTC(),
	}
	if ev.DurationSecs != nil {
		msg.DurationSecs = *ev.DurationSecs
	}
	if ev.AudioDurationSecs != nil {
		msg.AudioDurationSecs = *ev.AudioDurationSecs
	}
	for _, w := range ev.Timestamps {
		msg.Timestamps = append(msg.Timestamps, protocol.TimedWord{Word: w.Word, Start: w.Start, End: w.End})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		e.log.Warn("failed to marshal transcript", slog.String("error", err.Error()))
		return nil
	}
	if err := e.client.Conn().Publish(subjectFor(ev), data); err != nil {
		e.log.Warn("failed to publish transcript", slog.String("error", err.Error()))
	}
	return nil
}

func subjectFor(ev session.Event) string {
	switch {
	case ev.Final:
		return protocol.SubjectTranscriptFinal
	case ev.Text == "" && ev.AudioDurationSecs != nil && *ev.AudioDurationSecs == 0:
		return protocol.SubjectSessionReady
	default:
		return protocol.SubjectTranscriptPartial
	}
}
