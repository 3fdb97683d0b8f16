// Package engine turns a resynchronized mic/reference pairing into a single
// cleaned frame: run echo cancellation when a reference is present, then the
// preprocessor, in place.
//
// Cancel against the paired speaker frame when one exists, otherwise pass
// the mic frame through untouched, then always run the preprocessor over
// whatever came out of that step.
package engine

import (
	"aecsync/internal/dsp"
	"aecsync/internal/frame"
	"aecsync/internal/resync"
)

// Engine runs echo cancellation and preprocessing over resynchronized
// mic/reference chunks.
type Engine struct {
	echo  dsp.EchoCanceller
	pre   dsp.Preprocessor
	aecOn bool
	preOn bool
}

// New returns an Engine wired to echo and pre. Either may be nil: a nil echo
// canceller disables cancellation even when a reference frame is present, a
// nil preprocessor disables preprocessing.
func New(echo dsp.EchoCanceller, pre dsp.Preprocessor) *Engine {
	e := &Engine{
		echo:  echo,
		pre:   pre,
		aecOn: echo != nil,
		preOn: pre != nil,
	}
	if e.echo != nil && e.pre != nil {
		e.pre.AssociateEcho(e.echo)
	}
	return e
}

// SetAECEnabled toggles echo cancellation without discarding the canceller's
// adapted filter state.
func (e *Engine) SetAECEnabled(on bool) { e.aecOn = on && e.echo != nil }

// SetPreprocessEnabled toggles preprocessing.
func (e *Engine) SetPreprocessEnabled(on bool) { e.preOn = on && e.pre != nil }

// Process cleans one resynchronized chunk and returns the resulting frame.
// A chunk with no mic frame (Empty) yields an invalid, zero-value Frame.
func (e *Engine) Process(chunk resync.Chunk) frame.Frame {
	if chunk.Empty || !chunk.Mic.Valid() {
		return frame.Frame{}
	}

	var out frame.Frame
	if e.aecOn && e.echo != nil && chunk.Ref.Valid() {
		out = frame.New(chunk.Mic.Len())
		e.echo.Cancel(chunk.Mic.Samples(), chunk.Ref.Samples(), out.Samples())
	} else {
		out = chunk.Mic.Clone()
	}

	if e.preOn && e.pre != nil {
		e.pre.Run(out.Samples())
	}

	return out
}

// Reset clears the echo canceller's adaptive filter state and the
// preprocessor's adaptive state, if wired.
func (e *Engine) Reset() {
	if e.echo != nil {
		e.echo.Reset()
	}
	if e.pre != nil {
		e.pre.Reset()
	}
}

// VADProbability reports the preprocessor's most recent voice-activity
// estimate, or 0 when no preprocessor is wired.
func (e *Engine) VADProbability() float32 {
	if e.pre == nil {
		return 0
	}
	return e.pre.VADProbability()
}

// Close releases the echo canceller's and preprocessor's native resources,
// if any.
func (e *Engine) Close() {
	if e.echo != nil {
		e.echo.Close()
	}
	if e.pre != nil {
		e.pre.Close()
	}
}
