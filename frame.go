package aecsync

import (
	"aecsync/internal/dsp"
	"aecsync/internal/frame"
)

// Frame is a re-export of internal/frame.Frame: the public API surfaces
// a stable name while the implementation stays free to move.
type Frame = frame.Frame

// EchoCanceller, Preprocessor and Resampler re-export the internal/dsp
// contracts so a caller building with the speexdsp tag can construct a
// DSPBackend without importing an internal package directly.
type (
	EchoCanceller    = dsp.EchoCanceller
	Preprocessor     = dsp.Preprocessor
	Resampler        = dsp.Resampler
	PreprocessConfig = dsp.PreprocessConfig
)
