// Package wavio decodes WAV files into the normalized sample format the
// session consumes.
package wavio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// DecodeFile reads a 16-bit PCM WAV file and returns normalized float32
// samples at the file's rate. Stereo input is downmixed to mono by averaging;
// sample rates other than wantRate are rejected because no resampler is
// wired in.
func DecodeFile(path string, wantRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil {
		return nil, fmt.Errorf("wav file missing format chunk: %s", path)
	}
	if buf.Format.SampleRate != wantRate {
		return nil, fmt.Errorf("unsupported sample rate %d, want %d", buf.Format.SampleRate, wantRate)
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d, want 16", dec.BitDepth)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("wav file has no channels: %s", path)
	}

	frames := len(buf.Data) / channels
	samples := make([]float32, 0, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		samples = append(samples, float32(sum/channels)/32768.0)
	}
	return samples, nil
}
