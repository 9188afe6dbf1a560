// Package pcm converts raw s16le byte streams into normalized float samples.
package pcm

import "encoding/binary"

// DecodeS16LE converts little-endian signed 16-bit PCM bytes into normalized
// float32 samples in [-1.0, 1.0). A trailing odd byte is dropped; sample pairs
// do not re-align across chunk boundaries.
func DecodeS16LE(chunk []byte) []float32 {
	samples := make([]float32, 0, len(chunk)/2)
	for i := 0; i+1 < len(chunk); i += 2 {
		v := int16(binary.LittleEndian.Uint16(chunk[i:]))
		samples = append(samples, float32(v)/32768.0)
	}
	return samples
}

// Duration returns the audio duration in seconds covered by sampleCount
// samples at the given rate.
func Duration(sampleCount, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(sampleCount) / float64(sampleRate)
}
