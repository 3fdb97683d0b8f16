package assembler

import (
	"encoding/binary"
	"math"
	"testing"
)

func s16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func f32Bytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// TestFrameSizeInvariant covers property 1: every emitted frame has exactly
// the configured FrameSize length, regardless of input burst size.
func TestFrameSizeInvariant(t *testing.T) {
	a := New(Descriptor{Format: S16, Channels: 1, Rate: 48000}, 48000, 480, nil)

	samples := make([]int16, 480*3+50) // three full frames plus a partial one
	raw := s16Bytes(samples)

	frames := a.Push(raw, len(samples))
	if len(frames) != 3 {
		t.Fatalf("expected 3 complete frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Len() != 480 {
			t.Errorf("frame %d: len=%d, want 480", i, f.Len())
		}
	}

	// The leftover 50 samples should surface once enough more arrive.
	more := make([]int16, 430)
	frames = a.Push(s16Bytes(more), len(more))
	if len(frames) != 1 {
		t.Fatalf("expected the partial fill to complete into 1 frame, got %d", len(frames))
	}
}

// TestQuantizeClamp covers property 8: saturating clamp at the S16 extremes.
func TestQuantizeClamp(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{1.0, 32767},
		{-1.0, -32768},
		{1.5, 32767},
		{-1.5, -32768},
		{0.0, 0},
	}
	for _, c := range cases {
		if got := quantize(c.in); got != c.want {
			t.Errorf("quantize(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

// TestDownmixLinearity covers property 7: downmix is the masked sum of the
// selected channels, here both channels of a stereo input.
func TestDownmixLinearity(t *testing.T) {
	desc := Descriptor{Format: F32, Channels: 2, Rate: 48000, ChannelMask: 0b11}
	a := New(desc, 48000, 4, nil)

	interleaved := []float32{
		0.25, 0.25,
		0.5, -0.5,
		-1.0, 0.5,
		0.1, 0.1,
	}
	frames := a.Push(f32Bytes(interleaved), 4)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	want := []int16{
		quantize(0.5),
		quantize(0.0),
		quantize(-0.5),
		quantize(0.2),
	}
	got := frames[0].Samples()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

// TestChannelMaskSelectsSingleChannel covers scenario E6: a stereo mic with
// only the right channel selected (mask=0b10) emits the right channel alone.
func TestChannelMaskSelectsSingleChannel(t *testing.T) {
	desc := Descriptor{Format: F32, Channels: 2, Rate: 48000, ChannelMask: 0b10}
	a := New(desc, 48000, 1, nil)

	interleaved := []float32{1.0, -0.5}
	frames := a.Push(f32Bytes(interleaved), 1)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	want := int16(-16384) // -0.5 * 32768
	if got := frames[0].Samples()[0]; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

// TestResampleUpsamples covers scenario E5: a 44100Hz mono mic input
// resampled to the 48000Hz canonical rate via a passthrough-length stub
// resampler still emits FrameSize-length frames.
func TestResampleUpsamples(t *testing.T) {
	stub := &stubResampler{}
	desc := Descriptor{Format: S16, Channels: 1, Rate: 44100}
	a := New(desc, 48000, 480, stub)

	// 1 second of 44.1kHz audio, expect roughly 100 output frames at 480
	// samples/frame @ 48kHz.
	samples := make([]int16, 44100)
	frames := a.Push(s16Bytes(samples), len(samples))
	if len(frames) < 90 || len(frames) > 100 {
		t.Fatalf("expected roughly 100 frames from 1s @44.1kHz->48kHz, got %d", len(frames))
	}
	for _, f := range frames {
		if f.Len() != 480 {
			t.Fatalf("frame length = %d, want 480", f.Len())
		}
	}
}

// stubResampler resamples by zero-padding/truncating to outLen, exercising
// the assembler's resampler-injection seam without depending on
// internal/dsp/native's actual interpolation.
type stubResampler struct{}

func (s *stubResampler) Process(in []float32, outLen int) []float32 {
	out := make([]float32, outLen)
	copy(out, in)
	return out
}

func (s *stubResampler) Close() {}
