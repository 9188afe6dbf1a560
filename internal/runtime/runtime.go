// Package runtime assembles the captioning pipeline from config and runs a
// single session over the selected input.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/captionlabs/caption-core/internal/bus"
	"github.com/captionlabs/caption-core/internal/config"
	"github.com/captionlabs/caption-core/internal/emitter"
	"github.com/captionlabs/caption-core/internal/eventstore"
	"github.com/captionlabs/caption-core/internal/session"
	"github.com/captionlabs/caption-core/internal/telemetry"
	"github.com/captionlabs/caption-core/internal/transcriber"
	"github.com/captionlabs/caption-core/internal/wavio"
)

// Mode selects the input source for one invocation.
type Mode struct {
	// InputPath transcribes a WAV file in one pass (batch).
	InputPath string
	// Stdin streams raw s16le PCM from standard input until EOF.
	Stdin bool
	// Format overrides the configured output format when non-empty.
	Format string
}

type Runtime struct {
	cfg            config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	telemetryClose func(context.Context) error
	ready          atomic.Bool
	wg             sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes one captioning session end to end and tears everything down.
func (r *Runtime) Run(ctx context.Context, mode Mode) error {
	shutdownTelemetry, metricsHandler, err := telemetry.Setup(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.telemetryClose = shutdownTelemetry
	defer r.shutdown()

	recorder, err := telemetry.NewRecorder()
	if err != nil {
		r.logger.Warn("failed to create metrics recorder", slog.String("error", err.Error()))
		recorder = nil
	}

	if r.cfg.HTTP.Enabled {
		r.serveHTTP(metricsHandler)
	}

	tr, err := transcriber.New(r.cfg.Transcriber)
	if err != nil {
		return fmt.Errorf("build transcriber: %w", err)
	}

	format := r.cfg.Output.Format
	if mode.Format != "" {
		format = mode.Format
	}

	batch := mode.InputPath != ""
	sinks := emitter.NewMulti(emitter.NewWriter(os.Stdout, format))
	sess := session.New(sessionConfig(r.cfg.Session, batch), tr, sinks, r.logger, recorder)

	var busClient *bus.Client
	if r.cfg.Bus.Enabled {
		busClient, err = bus.Connect(ctx, r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("connect bus: %w", err)
		}
		defer busClient.Close()
		sinks.Add(emitter.NewBus(busClient, sess.ID()))
	}

	store, err := eventstore.Open(ctx, r.cfg.Store, r.logger)
	if err != nil {
		return fmt.Errorf("open transcript store: %w", err)
	}
	defer store.Close()

	source := "stdin"
	if batch {
		source = mode.InputPath
	}
	if err := store.AppendSession(ctx, sess.ID(), source); err != nil {
		r.logger.Warn("failed to record session", slog.String("error", err.Error()))
	}
	sinks.Add(emitter.NewStoreSink(ctx, store, sess.ID(), r.logger))

	r.ready.Store(true)
	r.logger.Info("session started",
		slog.String("session_id", sess.ID()),
		slog.String("source", source),
		slog.String("format", format))

	if batch {
		samples, err := wavio.DecodeFile(mode.InputPath, r.cfg.Session.SampleRate)
		if err != nil {
			return err
		}
		if err := sess.Ingest(ctx, samples); err != nil {
			return err
		}
		if err := sess.Finalize(ctx); err != nil {
			return err
		}
	} else {
		if err := sess.Run(ctx, os.Stdin); err != nil {
			return err
		}
	}

	r.logger.Info("session finished", slog.String("session_id", sess.ID()))
	return nil
}

// sessionConfig converts the ms/secs based service config into sample counts.
// Batch mode disables the partial cadence and the ready event.
func sessionConfig(cfg config.SessionConfig, batch bool) session.Config {
	sc := session.Config{
		SampleRate:       cfg.SampleRate,
		Channels:         cfg.Channels,
		MinSamples:       cfg.SampleRate * cfg.MinAudioMS / 1000,
		MaxBufferSamples: cfg.SampleRate * cfg.MaxBufferSecs,
		EmitReady:        cfg.EmitReady && !batch,
	}
	if !batch && cfg.PublishPartials {
		sc.TriggerSamples = cfg.SampleRate * cfg.PartialEveryMS / 1000
	}
	return sc
}

func (r *Runtime) serveHTTP(metricsHandler http.Handler) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()
	r.logger.Info("http endpoints started", slog.String("addr", addr))
}

func (r *Runtime) shutdown() {
	r.ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("http shutdown error", slog.String("error", err.Error()))
		}
		r.wg.Wait()
	}
	if r.telemetryClose != nil {
		if err := r.telemetryClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
