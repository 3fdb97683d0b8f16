// Package assembler accumulates interleaved PCM bursts of arbitrary size
// and emits fixed-size mono S16 frames at the pipeline's canonical rate.
//
// Fills a per-stream float accumulator up to its native-rate frame length,
// then resamples/quantizes/emits and resets the fill index, repeating for
// any samples left over from an oversized burst.
package assembler

import (
	"aecsync/internal/dsp"
	"aecsync/internal/frame"
)

// Format is the input sample format.
type Format int

const (
	S16 Format = iota
	F32
)

// Descriptor describes one input stream's format.
type Descriptor struct {
	Format      Format
	Channels    int
	Rate        int
	ChannelMask uint64
}

// Assembler accumulates raw interleaved PCM for one stream (mic or
// reference) and emits FrameSize mono S16 frames at CanonicalRate.
type Assembler struct {
	desc          Descriptor
	canonicalRate int
	frameSize     int
	resampler     dsp.Resampler // nil when desc.Rate == canonicalRate

	inputFrameLen int // input samples (per channel) needed to fill one output frame
	accum         []float32
	fill          int
}

// New returns an Assembler for the given input descriptor. resampler may be
// nil only when desc.Rate == canonicalRate; the pipeline is responsible for
// constructing one otherwise (see internal/dsp/native and
// internal/dsp/speexdsp).
func New(desc Descriptor, canonicalRate, frameSize int, resampler dsp.Resampler) *Assembler {
	inputFrameLen := frameSize * desc.Rate / canonicalRate
	if inputFrameLen <= 0 {
		inputFrameLen = 1
	}
	return &Assembler{
		desc:          desc,
		canonicalRate: canonicalRate,
		frameSize:     frameSize,
		resampler:     resampler,
		inputFrameLen: inputFrameLen,
		accum:         make([]float32, inputFrameLen),
	}
}

// Push interprets raw as count interleaved samples-per-channel of the
// declared format and channel count, downmixes to mono, and returns zero or
// more complete Frames at the canonical rate.
func (a *Assembler) Push(raw []byte, count int) []frame.Frame {
	var interleaved []float32
	switch a.desc.Format {
	case F32:
		interleaved = bytesToFloat32(raw)
	default:
		interleaved = int16BytesToFloat32(raw)
	}

	var out []frame.Frame
	pos := 0

	for count > 0 {
		room := a.inputFrameLen - a.fill
		take := count
		if take > room {
			take = room
		}

		downmix(a.accum[a.fill:a.fill+take], interleaved[pos*a.desc.Channels:], a.desc.Channels, a.desc.ChannelMask)

		a.fill += take
		count -= take
		pos += take

		if a.fill == a.inputFrameLen {
			out = append(out, a.emit())
			a.fill = 0
		}
	}

	return out
}

// emit resamples (if needed), quantizes and returns one canonical-rate
// Frame from the full accumulator, per §4.1 step 3.
func (a *Assembler) emit() frame.Frame {
	var samples []float32
	if a.resampler != nil {
		samples = a.resampler.Process(a.accum, a.frameSize)
	} else {
		samples = a.accum
	}

	f := frame.New(a.frameSize)
	dst := f.Samples()
	n := len(samples)
	if n > a.frameSize {
		n = a.frameSize
	}
	for i := 0; i < n; i++ {
		dst[i] = quantize(samples[i])
	}
	// Any shortfall (documented resampler quirk) is left at zero: frame.New
	// already zeroed the buffer.
	return f
}

// quantize converts a float sample in the [-1,1] domain to S16 with
// saturating clamp: +1.0 -> 32767, -1.0 -> -32768, +1.5 -> 32767 (saturate).
func quantize(v float32) int16 {
	scaled := v * 32768.0
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}

// downmix sums the channels selected by mask into dst, one float per
// time-step, from an interleaved float32 stream already normalized to the
// [-1,1] domain (S16 inputs are pre-scaled by 1/32768 in Push). A zero mask
// yields silence, except with channels == 1, where bit 0 is always treated as
// set. This
// single function replaces the source's function-pointer mixer dispatch
// (inMixerFloatMask / inMixerShortMask).
func downmix(dst []float32, interleaved []float32, channels int, mask uint64) {
	if channels <= 1 {
		mask |= 1
	}
	for i := range dst {
		var sum float32
		rowBase := i * channels
		for c := 0; c < channels; c++ {
			if mask&(1<<uint(c)) != 0 {
				sum += interleaved[rowBase+c]
			}
		}
		dst[i] = sum
	}
}
