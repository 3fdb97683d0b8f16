package aecsync

import "aecsync/internal/assembler"

// InputDescriptor describes one input stream's raw format, matching
// internal/assembler.Descriptor field-for-field (kept as a distinct type
// here so callers configuring a Pipeline never need to import an internal
// package).
type InputDescriptor struct {
	Format      SampleFormat
	Channels    int
	Rate        int
	ChannelMask uint64
}

func (d InputDescriptor) toAssembler() assembler.Descriptor {
	f := assembler.S16
	if d.Format == FormatF32 {
		f = assembler.F32
	}
	return assembler.Descriptor{
		Format:      f,
		Channels:    d.Channels,
		Rate:        d.Rate,
		ChannelMask: d.ChannelMask,
	}
}

// SampleFormat is the wire format of an input stream.
type SampleFormat int

const (
	FormatS16 SampleFormat = iota
	FormatF32
)

// Config configures a Pipeline. Zero-value fields are not valid; use
// Default and override only the fields that matter for a given deployment.
type Config struct {
	// CanonicalRate is the sample rate, in Hz, all frames are normalized to
	// and the resampler and echo canceller operate at.
	CanonicalRate int
	// FrameMS is the frame duration in milliseconds. FrameSize is derived
	// as CanonicalRate*FrameMS/1000.
	FrameMS int

	// AECEnabled turns on echo cancellation. When false, AddReference is a
	// no-op and mic frames pass straight to the preprocessor.
	AECEnabled bool

	Denoise      bool
	AGC          bool
	VAD          bool
	AGCTarget    int
	AGCMaxGain   int
	AGCIncrement int
	AGCDecrement int

	Mic       InputDescriptor
	Reference InputDescriptor

	// DSP overrides the default cgo-free backend. When set, Echo and
	// Preprocessor must both be non-nil (Validate rejects the override
	// otherwise); the two resamplers are used as given, nil meaning that
	// stream is not resampled. Set it when built with the speexdsp tag and
	// wired to internal/dsp/speexdsp constructors.
	DSP *DSPBackend

	Debug bool
}

// DSPBackend bundles an alternate echo canceller, preprocessor and
// resampler pair for mic and reference streams, replacing the internal/dsp/native
// default. The reference resampler is only used when AECEnabled is true; a
// non-nil resampler is applied even when the stream's Rate equals
// CanonicalRate.
type DSPBackend struct {
	Echo               EchoCanceller
	Preprocessor       Preprocessor
	MicResampler       Resampler
	ReferenceResampler Resampler
}

// FrameSize returns the number of samples per canonical-rate frame.
func (c Config) FrameSize() int {
	return c.CanonicalRate * c.FrameMS / 1000
}

// NominalLag is fixed by the resynchronizer's design; it is not
// configurable.
const NominalLag = 2

// FilterLength returns the echo canceller's tail length in samples, per §3:
// FrameSize*(10+NominalLag).
func (c Config) FilterLength() int {
	return c.FrameSize() * (10 + NominalLag)
}

// Default returns a Config with sensible defaults: 48kHz canonical rate,
// 10ms frames, AEC on, denoise+AGC on, VAD off, mono S16 mic and reference
// streams at the canonical rate.
func Default() Config {
	mono48 := InputDescriptor{Format: FormatS16, Channels: 1, Rate: 48000, ChannelMask: 1}
	return Config{
		CanonicalRate: 48000,
		FrameMS:       10,
		AECEnabled:    true,
		Denoise:       true,
		AGC:           true,
		VAD:           false,
		AGCTarget:     8000,
		AGCMaxGain:    20000,
		AGCIncrement:  12,
		AGCDecrement:  -40,
		Mic:           mono48,
		Reference:     mono48,
	}
}

// Validate reports the first configuration error found, or nil.
func (c Config) Validate() error {
	if c.CanonicalRate <= 0 {
		return &InitFailure{Reason: "canonical rate must be positive"}
	}
	if c.FrameMS <= 0 || c.FrameSize() <= 0 {
		return &InitFailure{Reason: "frame size must be a positive multiple of rate and duration"}
	}
	if c.Mic.Channels <= 0 {
		return &InitFailure{Reason: "mic channel count must be positive"}
	}
	if c.Mic.Rate <= 0 {
		return &InitFailure{Reason: "mic sample rate must be positive"}
	}
	if c.AECEnabled {
		if c.Reference.Channels <= 0 {
			return &InitFailure{Reason: "reference channel count must be positive"}
		}
		if c.Reference.Rate <= 0 {
			return &InitFailure{Reason: "reference sample rate must be positive"}
		}
	}
	if c.DSP != nil {
		if c.DSP.Echo == nil || c.DSP.Preprocessor == nil {
			return &InitFailure{Reason: "DSP override must supply both an echo canceller and a preprocessor"}
		}
	}
	return nil
}
