package transcriber

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/captionlabs/caption-core/internal/config"
)

func TestMockIsDeterministic(t *testing.T) {
	tr := NewMockTranscriber()
	samples := make([]float32, 32000)

	first, err := tr.Transcribe(context.Background(), samples, 16000, 1, TimestampsNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tr.Transcribe(context.Background(), samples, 16000, 1, TimestampsNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != second.Text {
		t.Fatalf("expected identical text, got %q vs %q", first.Text, second.Text)
	}
	if len(first.Tokens) != 0 {
		t.Fatalf("expected no tokens without timestamps, got %d", len(first.Tokens))
	}
}

func TestMockSentenceTimestamps(t *testing.T) {
	tr := NewMockTranscriber()
	result, err := tr.Transcribe(context.Background(), make([]float32, 48000), 16000, 1, TimestampsSentence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tokens) != 1 {
		t.Fatalf("expected one token, got %d", len(result.Tokens))
	}
	if result.Tokens[0].End != 3.0 {
		t.Fatalf("expected token to span 3.0s, got %v", result.Tokens[0].End)
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(config.TranscriberConfig{Mode: "grpc"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestNewExecRejectsEmptyCommand(t *testing.T) {
	if _, err := NewExecTranscriber(config.TranscriberConfig{Mode: "exec", Command: ""}); err == nil {
		t.Fatal("expected error for empty command")
	}
	if _, err := NewExecTranscriber(config.TranscriberConfig{Mode: "exec", Command: `"unterminated`}); err == nil {
		t.Fatal("expected error for unparsable command")
	}
}

func TestExecTranscribe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "fake-recognizer.sh")
	body := `#!/bin/sh
echo '{"text":"hello world","tokens":[{"word":"hello","start":0.0,"end":0.4},{"word":"world","start":0.5,"end":0.9}]}'
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tr, err := NewExecTranscriber(config.TranscriberConfig{Mode: "exec", Command: script})
	if err != nil {
		t.Fatalf("build transcriber: %v", err)
	}
	result, err := tr.Transcribe(context.Background(), make([]float32, 16000), 16000, 1, TimestampsSentence)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if result.Text != "hello world" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(result.Tokens) != 2 || result.Tokens[1].Text != "world" {
		t.Fatalf("unexpected tokens %+v", result.Tokens)
	}
}

func TestExecTranscribeFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "broken-recognizer.sh")
	body := "#!/bin/sh\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tr, err := NewExecTranscriber(config.TranscriberConfig{Mode: "exec", Command: script})
	if err != nil {
		t.Fatalf("build transcriber: %v", err)
	}
	if _, err := tr.Transcribe(context.Background(), make([]float32, 16000), 16000, 1, TimestampsNone); err == nil {
		t.Fatal("expected error from failing command")
	}
}
