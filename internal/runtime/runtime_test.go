package runtime

import (
	"testing"

	"github.com/captionlabs/caption-core/internal/config"
)

func TestSessionConfigStreaming(t *testing.T) {
	cfg := config.Default().Session

	sc := sessionConfig(cfg, false)
	if sc.SampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", sc.SampleRate)
	}
	if sc.TriggerSamples != 8000 {
		t.Fatalf("expected trigger at 8000 samples, got %d", sc.TriggerSamples)
	}
	if sc.MinSamples != 16000 {
		t.Fatalf("expected minimum 16000 samples, got %d", sc.MinSamples)
	}
	if sc.MaxBufferSamples != 16000*180 {
		t.Fatalf("expected ceiling %d samples, got %d", 16000*180, sc.MaxBufferSamples)
	}
	if !sc.EmitReady {
		t.Fatal("expected ready event enabled for streaming")
	}
}

func TestSessionConfigBatchDisablesCadence(t *testing.T) {
	cfg := config.Default().Session

	sc := sessionConfig(cfg, true)
	if sc.TriggerSamples != 0 {
		t.Fatalf("expected cadence disabled in batch mode, got %d", sc.TriggerSamples)
	}
	if sc.EmitReady {
		t.Fatal("expected no ready event in batch mode")
	}
}

func TestSessionConfigPartialsDisabled(t *testing.T) {
	cfg := config.Default().Session
	cfg.PublishPartials = false

	sc := sessionConfig(cfg, false)
	if sc.TriggerSamples != 0 {
		t.Fatalf("expected cadence disabled, got %d", sc.TriggerSamples)
	}
}
