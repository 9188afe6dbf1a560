package protocol

import "time"

// TimedWord is a word-level span attached to final transcripts.
type TimedWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is a transcript event broadcast on the bus.
type Transcript struct {
	SessionID         string      `json:"session_id"`
	Text              string      `json:"text"`
	Final             bool        `json:"is_final"`
	DurationSecs      float64     `json:"duration_secs,omitempty"`
	AudioDurationSecs float64     `json:"audio_duration_secs,omitempty"`
	Timestamps        []TimedWord `json:"timestamps,omitempty"`
	Error             string      `json:"error,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
}

const (
	SubjectSessionReady      = "caption.session.ready"
	SubjectTranscriptPartial = "caption.transcript.partial"
	SubjectTranscriptFinal   = "caption.transcript.final"
)
