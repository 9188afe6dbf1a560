package session

// TimedWord is a word-level span attached to final results.
type TimedWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Event is one emitted transcript result. Optional fields are pointers so the
// serialized form distinguishes "absent" from "0.0": the ready event carries
// audio_duration_secs=0.0 while the fallback final omits it entirely.
type Event struct {
	Text              string      `json:"text"`
	Final             bool        `json:"is_final"`
	DurationSecs      *float64    `json:"duration_secs,omitempty"`
	AudioDurationSecs *float64    `json:"audio_duration_secs,omitempty"`
	Timestamps        []TimedWord `json:"timestamps,omitempty"`
	Error             string      `json:"error,omitempty"`
}

// Emitter receives events in emission order. Emit must complete (including
// any flush to the destination) before the session reads more input.
type Emitter interface {
	Emit(ev Event) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ev Event) error

func (f EmitterFunc) Emit(ev Event) error { return f(ev) }

func secs(v float64) *float64 { return &v }
