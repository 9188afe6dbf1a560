package emitter

import "github.com/captionlabs/caption-core/internal/session"

// Multi fans one event out to several sinks in order. Secondary sinks (bus,
// store) swallow and log their own failures, so an error reaching the session
// always means the primary output stream is gone.
type Multi struct {
	sinks []session.Emitter
}

func NewMulti(sinks ...session.Emitter) *Multi {
	return &Multi{sinks: sinks}
}

// Add appends a sink. Used when a sink needs the session ID and is therefore
// constructed after the session.
func (m *Multi) Add(sink session.Emitter) {
	m.sinks = append(m.sinks, sink)
}

func (m *Multi) Emit(ev session.Event) error {
	for _, sink := range m.sinks {
		if err := sink.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}
