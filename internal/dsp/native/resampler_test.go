package native

import (
	"math"
	"testing"
)

func TestResamplerIdentityRatio(t *testing.T) {
	r := NewResampler(48000, 48000)
	in := make([]float32, 480)
	for i := range in {
		in[i] = float32(math.Sin(float64(i)))
	}
	out := r.Process(in, 480)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestResamplerUpsampleLength(t *testing.T) {
	r := NewResampler(44100, 48000)
	in := make([]float32, 441) // 10ms at 44.1kHz
	for i := range in {
		in[i] = 0.5
	}
	out := r.Process(in, 480)
	if len(out) != 480 {
		t.Fatalf("output length: got %d, want 480", len(out))
	}
}

func TestResamplerPadsShortfall(t *testing.T) {
	r := NewResampler(8000, 48000)
	in := make([]float32, 1)
	out := r.Process(in, 480)
	if len(out) != 480 {
		t.Fatalf("output length: got %d, want 480", len(out))
	}
	// A single input sample can't produce 480 real output samples at this
	// ratio; the tail must be zero-padded rather than erroring.
	allZeroTail := true
	for _, v := range out[6:] {
		if v != 0 {
			allZeroTail = false
			break
		}
	}
	if !allZeroTail {
		t.Fatal("expected zero-padded tail when natural output falls short of outLen")
	}
}

func TestResamplerEmptyInput(t *testing.T) {
	r := NewResampler(44100, 48000)
	out := r.Process(nil, 480)
	if len(out) != 480 {
		t.Fatalf("output length: got %d, want 480", len(out))
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("expected silence for empty input")
		}
	}
}
