// Package aecsync implements a real-time acoustic echo cancellation
// pipeline: two frame assemblers (mic, reference) feed a frame-aligned
// resynchronizer, whose paired output drives an echo-cancellation and
// preprocessing engine, whose cleaned frames land in a pull-based output
// queue.
//
// The five stages live in internal/assembler, internal/resync,
// internal/engine and internal/outqueue; this file wires them together and
// owns the pipeline's public lifecycle.
package aecsync

import (
	"log"
	"sync/atomic"

	"aecsync/internal/assembler"
	"aecsync/internal/dsp"
	"aecsync/internal/dsp/native"
	"aecsync/internal/engine"
	"aecsync/internal/outqueue"
	"aecsync/internal/resync"
)

// Pipeline is the assembled AEC pipeline described by a Config. Zero value
// is not usable; use New.
type Pipeline struct {
	cfg Config

	micAsm *assembler.Assembler
	refAsm *assembler.Assembler

	resync *resync.Resynchronizer
	engine *engine.Engine
	out    *outqueue.Queue

	debug atomic.Bool

	processedFrames uint64
	droppedMic      uint64
	droppedRef      uint64
}

// New validates cfg, constructs the DSP backend (native by default, or
// cfg.DSP if supplied) and wires the full pipeline. The only error path is
// configuration or DSP-init failure; runtime operation never returns an
// error.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frameSize := cfg.FrameSize()

	var echo dsp.EchoCanceller
	var pre dsp.Preprocessor
	var micResampler, refResampler dsp.Resampler

	if cfg.DSP != nil {
		echo = cfg.DSP.Echo
		pre = cfg.DSP.Preprocessor
		micResampler = cfg.DSP.MicResampler
		refResampler = cfg.DSP.ReferenceResampler
	} else {
		if cfg.AECEnabled {
			echo = native.NewEchoCanceller(cfg.FilterLength())
		}
		pre = native.NewPreprocessor(dsp.PreprocessConfig{
			Denoise:      cfg.Denoise,
			AGC:          cfg.AGC,
			VAD:          cfg.VAD,
			AGCTarget:    cfg.AGCTarget,
			AGCMaxGain:   cfg.AGCMaxGain,
			AGCIncrement: cfg.AGCIncrement,
			AGCDecrement: cfg.AGCDecrement,
		})
		if cfg.Mic.Rate != cfg.CanonicalRate {
			micResampler = native.NewResampler(cfg.Mic.Rate, cfg.CanonicalRate)
		}
		if cfg.AECEnabled && cfg.Reference.Rate != cfg.CanonicalRate {
			refResampler = native.NewResampler(cfg.Reference.Rate, cfg.CanonicalRate)
		}
	}

	p := &Pipeline{
		cfg:    cfg,
		micAsm: assembler.New(cfg.Mic.toAssembler(), cfg.CanonicalRate, frameSize, micResampler),
		resync: resync.New(),
		engine: engine.New(echo, pre),
		out:    outqueue.New(frameSize),
	}
	if cfg.AECEnabled {
		p.refAsm = assembler.New(cfg.Reference.toAssembler(), cfg.CanonicalRate, frameSize, refResampler)
	}
	p.debug.Store(cfg.Debug)
	return p, nil
}

// AddMic feeds nsamp interleaved samples-per-channel of raw microphone
// audio, in the format declared by Config.Mic, into the pipeline. When AEC
// is enabled, complete frames are handed to the resynchronizer and cleaned
// once paired with a reference frame; otherwise each frame goes straight to
// the engine (which passes it through the preprocessor only) and the output
// queue.
func (p *Pipeline) AddMic(raw []byte, nsamp int) {
	for _, f := range p.micAsm.Push(raw, nsamp) {
		if !p.cfg.AECEnabled {
			clean := p.engine.Process(resync.Chunk{Mic: f})
			p.out.Push(clean.Samples())
			atomic.AddUint64(&p.processedFrames, 1)
			continue
		}
		if p.resync.PushMic(f) {
			atomic.AddUint64(&p.droppedMic, 1)
			p.logf("mic queue overflow, dropped oldest frame")
		}
	}
}

// AddReference feeds nsamp interleaved samples-per-channel of raw reference
// (far-end/loopback) audio into the pipeline. A no-op when AEC is disabled.
func (p *Pipeline) AddReference(raw []byte, nsamp int) {
	if p.refAsm == nil {
		return
	}
	for _, f := range p.refAsm.Push(raw, nsamp) {
		chunk := p.resync.PushRef(f)
		if chunk.Empty {
			atomic.AddUint64(&p.droppedRef, 1)
			p.logf("reference frame dropped, no mic frame to pair with")
			continue
		}
		clean := p.engine.Process(chunk)
		p.out.Push(clean.Samples())
		atomic.AddUint64(&p.processedFrames, 1)
	}
}

// PullOutput copies up to len(dst) cleaned samples into dst and returns the
// count copied. Returns 0 without blocking when the output queue is empty;
// the caller is responsible for filling any shortfall with silence.
func (p *Pipeline) PullOutput(dst []int16) int {
	return p.out.Pull(dst)
}

// Reset clears all buffered state: the resync queue and state machine, the
// echo canceller's and preprocessor's adaptive state, the output queue, and
// the lifetime counters reported by Stats. Synchronous; always succeeds.
func (p *Pipeline) Reset() {
	p.resync.Reset()
	p.engine.Reset()
	p.out.Reset()
	atomic.StoreUint64(&p.processedFrames, 0)
	atomic.StoreUint64(&p.droppedMic, 0)
	atomic.StoreUint64(&p.droppedRef, 0)
}

// Stats returns a snapshot of the pipeline's lifetime counters, zeroed by
// Reset.
func (p *Pipeline) Stats() Statistics {
	return Statistics{
		ProcessedFrames:     atomic.LoadUint64(&p.processedFrames),
		DroppedMicFrames:    atomic.LoadUint64(&p.droppedMic),
		DroppedRefFrames:    atomic.LoadUint64(&p.droppedRef),
		DroppedOutputFrames: p.out.Dropped() / uint64(p.cfg.FrameSize()),
		State:               resyncStateName(p.resync.State()),
	}
}

// SetDebug enables or disables debug logging of drop events.
func (p *Pipeline) SetDebug(on bool) {
	p.debug.Store(on)
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.debug.Load() {
		log.Printf("[aecsync] "+format, args...)
	}
}

// Close releases the DSP backend's native resources (a no-op for the
// default cgo-free backend, meaningful for a speexdsp-backed one).
func (p *Pipeline) Close() {
	p.engine.Close()
}
