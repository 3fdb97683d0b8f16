// Package dsp defines the external DSP contracts the aecsync pipeline is
// built around: an echo canceller, a preprocessor (denoise + AGC + optional
// VAD) and a resampler. The pipeline core treats implementations of these
// interfaces as external collaborators — see internal/dsp/native for a
// cgo-free default and internal/dsp/speexdsp for an optional Speex-backed
// implementation.
package dsp

// EchoCanceller removes the reference-signal component from a captured
// frame. Speex's speex_echo_state is the reference integration, but any
// implementation satisfying this interface can be substituted.
type EchoCanceller interface {
	// Cancel computes clean = mic - estimated_echo(ref) into out. mic, ref
	// and out must all have the same length (the pipeline's frame size).
	// out may not alias mic or ref.
	Cancel(mic, ref []int16, out []int16)

	// Reset reinitializes the adaptive filter, discarding any learned echo
	// path. Called by Pipeline.Reset.
	Reset()

	// Close releases any resources (e.g. a cgo handle). Idempotent.
	Close()
}

// PreprocessConfig mirrors the tunable keys of Speex's preprocessor
// (SPEEX_PREPROCESS_SET_DENOISE, _AGC, _VAD, _AGC_TARGET, _AGC_MAX_GAIN,
// _AGC_INCREMENT, _AGC_DECREMENT).
type PreprocessConfig struct {
	Denoise      bool
	AGC          bool
	VAD          bool
	AGCTarget    int // linear-ish target level, Speex default 8000
	AGCMaxGain   int // Speex default 20000
	AGCIncrement int // dB/s, Speex default +12
	AGCDecrement int // dB/s, Speex default -40 (negative)
}

// DefaultPreprocessConfig returns the standard preprocessor settings:
// denoise and AGC on, VAD off.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		Denoise:      true,
		AGC:          true,
		VAD:          false,
		AGCTarget:    8000,
		AGCMaxGain:   20000,
		AGCIncrement: 12,
		AGCDecrement: -40,
	}
}

// Preprocessor runs denoise/AGC/VAD on a frame in place, after echo
// cancellation. Associating it with an EchoCanceller lets residual echo
// suppression cooperate with denoise, mirroring
// SPEEX_PREPROCESS_SET_ECHO_STATE.
type Preprocessor interface {
	// AssociateEcho links this preprocessor with the echo canceller used
	// upstream, for residual-echo-aware denoise. May be called with nil to
	// detach.
	AssociateEcho(echo EchoCanceller)

	// Configure applies (or reapplies) the preprocessor settings.
	Configure(cfg PreprocessConfig)

	// Run processes frame in place.
	Run(frame []int16)

	// VADProbability returns the most recent voice-activity probability in
	// [0,1], meaningful only when VAD is enabled in the active config.
	VADProbability() float32

	// Reset reinitializes adaptive state (AGC gain, noise gate hold, VAD
	// history) back to its post-Configure starting point. Called by
	// Pipeline.Reset.
	Reset()

	// Close releases any resources. Idempotent.
	Close()
}

// Resampler converts a fixed-length block of mono float32 samples at one
// rate to a fixed-length block at another, mirroring
// speex_resampler_process_float's single-channel, float-in/float-out
// contract.
type Resampler interface {
	// Process resamples in and returns a slice of exactly outLen samples.
	// If the underlying resampler produces fewer samples than outLen (a
	// documented Speex quirk on some ratios), the result is zero-padded at
	// the tail rather than erroring.
	Process(in []float32, outLen int) []float32

	// Close releases any resources. Idempotent.
	Close()
}
