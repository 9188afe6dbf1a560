package transcriber

import (
	"context"
	"fmt"

	"github.com/captionlabs/caption-core/internal/config"
)

// TimestampMode selects whether a recognition call produces word timing.
type TimestampMode int

const (
	// TimestampsNone skips alignment; used for partial results where speed wins.
	TimestampsNone TimestampMode = iota
	// TimestampsSentence produces sentence-aligned word spans.
	TimestampsSentence
)

func (m TimestampMode) String() string {
	switch m {
	case TimestampsNone:
		return "none"
	case TimestampsSentence:
		return "sentence"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// TimedToken is a word-level span within a recognition result.
type TimedToken struct {
	Text  string
	Start float64
	End   float64
}

// Result captures recognizer output for one call.
type Result struct {
	Text   string
	Tokens []TimedToken
}

// Transcriber abstracts STT engines. Each call is a full, independent pass
// over the provided samples; implementations keep no cross-call state.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, channels int, mode TimestampMode) (Result, error)
}

// New builds a transcriber from config.
func New(cfg config.TranscriberConfig) (Transcriber, error) {
	switch cfg.Mode {
	case "mock":
		return NewMockTranscriber(), nil
	case "exec":
		return NewExecTranscriber(cfg)
	default:
		return nil, fmt.Errorf("unknown transcriber mode %q", cfg.Mode)
	}
}
