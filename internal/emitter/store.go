package emitter

import (
	"context"
	"log/slog"

	"github.com/captionlabs/caption-core/internal/eventstore"
	"github.com/captionlabs/caption-core/internal/session"
)

// StoreSink records session events in the transcript store. Store failures
// are logged and never surfaced to the session.
type StoreSink struct {
	ctx       context.Context
	store     *eventstore.Store
	sessionID string
	log       *slog.Logger
}

func NewStoreSink(ctx context.Context, store *eventstore.Store, sessionID string, log *slog.Logger) *StoreSink {
	return &StoreSink{
		ctx:       ctx,
		store:     store,
		sessionID: sessionID,
		log:       log.With("component", "store-emitter"),
	}
}

func (e *StoreSink) Emit(ev session.Event) error {
	t := eventstore.Transcript{
		SessionID: e.sessionID,
		Text:      ev.Text,
		Final:     ev.Final,
	}
	if ev.AudioDurationSecs != nil {
		t.AudioDurationSecs = *ev.AudioDurationSecs
	}
	if err := e.store.AppendTranscript(e.ctx, t); err != nil {
		e.log.Warn("failed to record transcript", slog.String("error", err.Error()))
	}
	return nil
}
