package transcriber

import (
	"context"
	"fmt"
)

type mockTranscriber struct{}

// NewMockTranscriber returns a deterministic stand-in engine. Output text is
// derived from the audio length so partials visibly grow as audio accumulates.
func NewMockTranscriber() Transcriber {
	return &mockTranscriber{}
}

func (m *mockTranscriber) Transcribe(_ context.Context, samples []float32, sampleRate int, _ int, mode TimestampMode) (Result, error) {
	duration := 0.0
	if sampleRate > 0 {
		duration = float64(len(samples)) / float64(sampleRate)
	}
	result := Result{
		Text: fmt.Sprintf("[%s transcript covering %.2fs]", mode, duration),
	}
	if mode == TimestampsSentence {
		result.Tokens = []TimedToken{{Text: result.Text, Start: 0, End: duration}}
	}
	return result, nil
}
