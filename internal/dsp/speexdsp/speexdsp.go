//go:build speexdsp

// Package speexdsp binds libspeexdsp's echo canceller, preprocessor and
// resampler to the aecsync/internal/dsp contracts. It's built only when
// the speexdsp tag is set (requires `pkg-config speexdsp` and its headers
// at build time), so the core module never forces a cgo dependency on
// callers who don't need it.
//
// Uses the same speex_echo_ctl/speex_preprocess_ctl control-value idiom
// as libspeexdsp's own C API, wired to the dsp.EchoCanceller/
// dsp.Preprocessor/dsp.Resampler interfaces.
package speexdsp

/*
#cgo pkg-config: speexdsp
#include <speex/speex_echo.h>
#include <speex/speex_preprocess.h>
#include <speex/speex_resampler.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"unsafe"

	"aecsync/internal/dsp"
)

// EchoCanceller wraps a SpeexEchoState.
type EchoCanceller struct {
	state *C.SpeexEchoState
}

// NewEchoCanceller creates a Speex echo canceller with the given frame size
// and filter length, in samples, for a single-channel reference, at
// sampleRate Hz.
func NewEchoCanceller(frameSize, filterLen, sampleRate int) (*EchoCanceller, error) {
	state := C.speex_echo_state_init(C.int(frameSize), C.int(filterLen))
	if state == nil {
		return nil, errors.New("speexdsp: speex_echo_state_init failed")
	}
	rate := C.int(sampleRate)
	C.speex_echo_ctl(state, C.SPEEX_ECHO_SET_SAMPLING_RATE, unsafe.Pointer(&rate))
	return &EchoCanceller{state: state}, nil
}

// Cancel implements dsp.EchoCanceller.
func (e *EchoCanceller) Cancel(mic, ref []int16, out []int16) {
	if len(mic) == 0 {
		return
	}
	micPtr := (*C.spx_int16_t)(unsafe.Pointer(&mic[0]))
	refPtr := (*C.spx_int16_t)(unsafe.Pointer(&ref[0]))
	outPtr := (*C.spx_int16_t)(unsafe.Pointer(&out[0]))
	C.speex_echo_cancellation(e.state, micPtr, refPtr, outPtr)
}

// Reset implements dsp.EchoCanceller.
func (e *EchoCanceller) Reset() {
	if e.state != nil {
		C.speex_echo_state_reset(e.state)
	}
}

// Close implements dsp.EchoCanceller.
func (e *EchoCanceller) Close() {
	if e.state != nil {
		C.speex_echo_state_destroy(e.state)
		e.state = nil
	}
}

// handle exposes the raw echo state to Preprocessor.AssociateEcho, since
// SPEEX_PREPROCESS_SET_ECHO_STATE needs the C pointer, not the Go wrapper.
func (e *EchoCanceller) handle() *C.SpeexEchoState { return e.state }

// Preprocessor wraps a SpeexPreprocessState.
type Preprocessor struct {
	state *C.SpeexPreprocessState

	frameSize  int
	sampleRate int
	cfg        dsp.PreprocessConfig
	echo       dsp.EchoCanceller
}

// NewPreprocessor creates a Speex preprocessor for the given frame size and
// sample rate, applying cfg immediately.
func NewPreprocessor(frameSize, sampleRate int, cfg dsp.PreprocessConfig) (*Preprocessor, error) {
	state := C.speex_preprocess_state_init(C.int(frameSize), C.int(sampleRate))
	if state == nil {
		return nil, errors.New("speexdsp: speex_preprocess_state_init failed")
	}
	p := &Preprocessor{state: state, frameSize: frameSize, sampleRate: sampleRate}
	p.Configure(cfg)
	return p, nil
}

// AssociateEcho implements dsp.Preprocessor.
func (p *Preprocessor) AssociateEcho(echo dsp.EchoCanceller) {
	p.echo = echo
	sx, ok := echo.(*EchoCanceller)
	if !ok || sx == nil || sx.handle() == nil {
		return
	}
	C.speex_preprocess_ctl(p.state, C.SPEEX_PREPROCESS_SET_ECHO_STATE, unsafe.Pointer(sx.handle()))
}

// Configure implements dsp.Preprocessor.
func (p *Preprocessor) Configure(cfg dsp.PreprocessConfig) {
	p.cfg = cfg
	setBool(p.state, C.SPEEX_PREPROCESS_SET_DENOISE, cfg.Denoise)
	setBool(p.state, C.SPEEX_PREPROCESS_SET_AGC, cfg.AGC)
	setBool(p.state, C.SPEEX_PREPROCESS_SET_VAD, cfg.VAD)

	target := C.spx_int32_t(cfg.AGCTarget)
	C.speex_preprocess_ctl(p.state, C.SPEEX_PREPROCESS_SET_AGC_TARGET, unsafe.Pointer(&target))

	maxGain := C.spx_int32_t(cfg.AGCMaxGain)
	C.speex_preprocess_ctl(p.state, C.SPEEX_PREPROCESS_SET_AGC_MAX_GAIN, unsafe.Pointer(&maxGain))

	inc := C.spx_int32_t(cfg.AGCIncrement)
	C.speex_preprocess_ctl(p.state, C.SPEEX_PREPROCESS_SET_AGC_INCREMENT, unsafe.Pointer(&inc))

	dec := C.spx_int32_t(cfg.AGCDecrement)
	C.speex_preprocess_ctl(p.state, C.SPEEX_PREPROCESS_SET_AGC_DECREMENT, unsafe.Pointer(&dec))
}

// Run implements dsp.Preprocessor.
func (p *Preprocessor) Run(frame []int16) {
	if len(frame) == 0 {
		return
	}
	ptr := (*C.spx_int16_t)(unsafe.Pointer(&frame[0]))
	C.speex_preprocess_run(p.state, ptr)
}

// VADProbability implements dsp.Preprocessor. It reads the speech
// probability of the last processed frame (SPEEX_PREPROCESS_GET_PROB, a
// percentage) and scales it to [0,1], or returns 0 when VAD is disabled.
func (p *Preprocessor) VADProbability() float32 {
	if !p.cfg.VAD {
		return 0
	}
	var prob C.spx_int32_t
	C.speex_preprocess_ctl(p.state, C.SPEEX_PREPROCESS_GET_PROB, unsafe.Pointer(&prob))
	return float32(prob) / 100.0
}

// Reset implements dsp.Preprocessor. libspeexdsp has no direct preprocessor
// reset control, so this destroys and reinitializes the state at the same
// frame size and sample rate, then reapplies the last Configure and
// AssociateEcho calls.
func (p *Preprocessor) Reset() {
	if p.state != nil {
		C.speex_preprocess_state_destroy(p.state)
	}
	p.state = C.speex_preprocess_state_init(C.int(p.frameSize), C.int(p.sampleRate))
	p.Configure(p.cfg)
	if p.echo != nil {
		p.AssociateEcho(p.echo)
	}
}

// Close implements dsp.Preprocessor.
func (p *Preprocessor) Close() {
	if p.state != nil {
		C.speex_preprocess_state_destroy(p.state)
		p.state = nil
	}
}

func setBool(state *C.SpeexPreprocessState, ctl C.int, v bool) {
	val := C.spx_int32_t(0)
	if v {
		val = 1
	}
	C.speex_preprocess_ctl(state, ctl, unsafe.Pointer(&val))
}

// Resampler wraps a SpeexResamplerState configured for single-channel,
// float32 in/out processing.
type Resampler struct {
	state *C.SpeexResamplerState
}

// NewResampler creates a mono Speex resampler at the given quality (0-10;
// 3 is a reasonable default for voice).
func NewResampler(inRate, outRate, quality int) (*Resampler, error) {
	var errCode C.int
	state := C.speex_resampler_init(1, C.spx_uint32_t(inRate), C.spx_uint32_t(outRate), C.int(quality), &errCode)
	if state == nil || errCode != 0 {
		return nil, errors.New("speexdsp: speex_resampler_init failed")
	}
	return &Resampler{state: state}, nil
}

// Process implements dsp.Resampler.
func (r *Resampler) Process(in []float32, outLen int) []float32 {
	out := make([]float32, outLen)
	if len(in) == 0 {
		return out
	}
	inLen := C.spx_uint32_t(len(in))
	outLenC := C.spx_uint32_t(outLen)
	C.speex_resampler_process_float(
		r.state, 0,
		(*C.float)(unsafe.Pointer(&in[0])), &inLen,
		(*C.float)(unsafe.Pointer(&out[0])), &outLenC,
	)
	// speex_resampler_process_float may produce fewer than outLen samples on
	// some ratios; the remainder of out is already zero from make().
	return out
}

// Close implements dsp.Resampler.
func (r *Resampler) Close() {
	if r.state != nil {
		C.speex_resampler_destroy(r.state)
		r.state = nil
	}
}
