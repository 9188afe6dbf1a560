// Package session implements the streaming transcription core: a rolling
// sample buffer with a cadence policy for partial recognition, a hard buffer
// ceiling, and a guaranteed terminal result on end of input.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/captionlabs/caption-core/internal/pcm"
	"github.com/captionlabs/caption-core/internal/telemetry"
	"github.com/captionlabs/caption-core/internal/transcriber"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1

	// ~0.5s of new audio between partial recognitions.
	DefaultTriggerSamples = 8000
	// ~1s minimum before the first recognition; shorter audio produces garbage.
	DefaultMinSamples = 16000
	// ~3 minutes retained; the recognition engines this feeds have a hard
	// input-length limit not far beyond that.
	DefaultMaxBufferSamples = 16000 * 180

	// Input is read in 0.25s chunks for responsiveness.
	readChunkBytes = 8000
)

// ErrSessionDone is returned when audio is offered to a finished session.
var ErrSessionDone = errors.New("session already finished")

// Config tunes a single session. Zero fields fall back to the defaults above.
type Config struct {
	SampleRate       int
	Channels         int
	TriggerSamples   int // 0 disables the partial cadence entirely
	MinSamples       int
	MaxBufferSamples int
	EmitReady        bool
}

func (c *Config) applyDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Channels <= 0 {
		c.Channels = DefaultChannels
	}
	if c.MinSamples <= 0 {
		c.MinSamples = DefaultMinSamples
	}
	if c.MaxBufferSamples <= 0 {
		c.MaxBufferSamples = DefaultMaxBufferSamples
	}
}

// Session owns the rolling audio buffer and all cadence/eviction/fallback
// decisions. It is single-use and not safe for concurrent use: one goroutine
// feeds it, recognition blocks that goroutine.
type Session struct {
	id      string
	cfg     Config
	tr      transcriber.Transcriber
	emit    Emitter
	log     *slog.Logger
	metrics *telemetry.Recorder

	buffer   []float32
	pending  int
	lastGood string
	state    State

	now func() time.Time
}

func New(cfg Config, tr transcriber.Transcriber, emit Emitter, logger *slog.Logger, metrics *telemetry.Recorder) *Session {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		cfg:     cfg,
		tr:      tr,
		emit:    emit,
		log:     logger.With("component", "session", "session_id", id),
		metrics: metrics,
		state:   StateAccumulating,
		now:     time.Now,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// BufferLen reports the retained sample count.
func (s *Session) BufferLen() int { return len(s.buffer) }

// Run drives the session over a raw s16le PCM stream until EOF. It emits the
// ready event, ingests chunk by chunk, and finalizes when the reader is
// exhausted. Transient interrupts are retried; any other read error aborts
// without a terminal event.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	if s.state != StateAccumulating {
		return ErrSessionDone
	}
	if s.cfg.EmitReady {
		if err := s.emit.Emit(Event{AudioDurationSecs: secs(0)}); err != nil {
			return fmt.Errorf("emit ready event: %w", err)
		}
	}

	buf := make([]byte, readChunkBytes)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if ingestErr := s.Ingest(ctx, pcm.DecodeS16LE(buf[:n])); ingestErr != nil {
				return ingestErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.Finalize(ctx)
			}
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			s.state = StateDone
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// Ingest appends samples to the buffer tail, evicts the head past the
// ceiling, and triggers a partial recognition when the cadence allows.
func (s *Session) Ingest(ctx context.Context, samples []float32) error {
	if s.state != StateAccumulating {
		return ErrSessionDone
	}

	s.buffer = append(s.buffer, samples...)
	s.pending += len(samples)

	if len(s.buffer) > s.cfg.MaxBufferSamples {
		excess := len(s.buffer) - s.cfg.MaxBufferSamples
		// Copy down in place so the backing array stops growing; the evicted
		// audio is permanently lost to future recognitions.
		copy(s.buffer, s.buffer[excess:])
		s.buffer = s.buffer[:s.cfg.MaxBufferSamples]
		s.log.Warn("audio buffer ceiling exceeded, oldest audio dropped",
			slog.Int("evicted_samples", excess),
			slog.Int("buffer_samples", len(s.buffer)))
		s.metrics.Evicted(ctx, excess)
	}

	if s.cfg.TriggerSamples > 0 && s.pending >= s.cfg.TriggerSamples && len(s.buffer) >= s.cfg.MinSamples {
		s.pending = 0
		return s.transcribePartial(ctx)
	}
	return nil
}

func (s *Session) transcribePartial(ctx context.Context) error {
	audioDuration := pcm.Duration(len(s.buffer), s.cfg.SampleRate)

	start := s.now()
	result, err := s.tr.Transcribe(ctx, s.buffer, s.cfg.SampleRate, s.cfg.Channels, transcriber.TimestampsNone)
	s.metrics.Inference(ctx, s.now().Sub(start), false)
	if err != nil {
		// Keep accumulating; the next tick retries with more audio.
		s.metrics.Failure(ctx, "partial")
		s.log.Warn("partial transcription failed", slog.String("error", err.Error()))
		return nil
	}

	s.lastGood = result.Text
	s.metrics.Partial(ctx)
	return s.emit.Emit(Event{
		Text:              result.Text,
		AudioDurationSecs: secs(audioDuration),
	})
}

// Finalize runs the terminal recognition and emits exactly one final event.
// If the final recognition fails, the last successful partial text is emitted
// as a degraded result; failing that, an explicit error-terminal event closes
// the stream so consumers never end without a final.
func (s *Session) Finalize(ctx context.Context) error {
	if s.state != StateAccumulating {
		return ErrSessionDone
	}
	s.state = StateFinalizing
	defer func() { s.state = StateDone }()

	if len(s.buffer) == 0 {
		s.metrics.Final(ctx)
		return s.emit.Emit(Event{
			Final:             true,
			DurationSecs:      secs(0),
			AudioDurationSecs: secs(0),
		})
	}

	start := s.now()
	result, err := s.tr.Transcribe(ctx, s.buffer, s.cfg.SampleRate, s.cfg.Channels, transcriber.TimestampsSentence)
	elapsed := s.now().Sub(start)
	s.metrics.Inference(ctx, elapsed, true)

	if err != nil {
		s.metrics.Failure(ctx, "final")
		s.log.Error("final transcription failed", slog.String("error", err.Error()))
		s.metrics.Final(ctx)
		if s.lastGood != "" {
			// Degraded result: text only, no timing fields.
			return s.emit.Emit(Event{Text: s.lastGood, Final: true})
		}
		return s.emit.Emit(Event{Final: true, Error: err.Error()})
	}

	ev := Event{
		Text:              result.Text,
		Final:             true,
		DurationSecs:      secs(elapsed.Seconds()),
		AudioDurationSecs: secs(pcm.Duration(len(s.buffer), s.cfg.SampleRate)),
	}
	for _, tok := range result.Tokens {
		ev.Timestamps = append(ev.Timestamps, TimedWord{Word: tok.Text, Start: tok.Start, End: tok.End})
	}
	s.metrics.Final(ctx)
	return s.emit.Emit(ev)
}
