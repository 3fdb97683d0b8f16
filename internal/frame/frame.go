// Package frame defines the owned audio buffer type that flows through the
// aecsync pipeline: assembler -> resynchronizer -> engine -> output queue.
//
// A Frame is single-holder: whoever receives one either consumes it and lets
// it go, or hands it further down the pipeline. There is no aliasing and no
// reference counting.
package frame

// Frame is a contiguous, owned buffer of mono S16 PCM samples at the
// canonical sample rate. Its length is fixed by the pipeline configuration
// (FrameSize) for the lifetime of a Pipeline.
type Frame struct {
	samples []int16
}

// New allocates a zeroed (silent) Frame of the given length.
func New(size int) Frame {
	return Frame{samples: make([]int16, size)}
}

// Samples returns the underlying sample slice for in-place mutation. Callers
// must not retain it beyond the Frame's own lifetime in the pipeline.
func (f Frame) Samples() []int16 {
	return f.samples
}

// Len returns the number of samples in the frame.
func (f Frame) Len() int {
	return len(f.samples)
}

// Valid reports whether the frame holds an allocated buffer.
func (f Frame) Valid() bool {
	return f.samples != nil
}

// Clone returns a fresh Frame with a copy of the same samples. Used at the
// engine boundary, where a cleaned frame must not alias the mic frame it was
// derived from.
func (f Frame) Clone() Frame {
	out := make([]int16, len(f.samples))
	copy(out, f.samples)
	return Frame{samples: out}
}
