package native

// Resampler is a linear-interpolation resampler: lightweight, state
// carried across calls via lastSample for continuity, sufficient for
// voice-quality resampling without pulling in a full polyphase filter bank.
type Resampler struct {
	ratio      float64
	lastSample float32
}

// NewResampler returns a Resampler converting from inRate to outRate.
func NewResampler(inRate, outRate int) *Resampler {
	return &Resampler{ratio: float64(outRate) / float64(inRate)}
}

// Process implements dsp.Resampler. If the natural output length (computed
// from the ratio) falls short of outLen, the tail is zero-padded — the same
// documented quirk speex_resampler_process_float exhibits on some ratios,
// which internal/assembler is written to tolerate.
func (r *Resampler) Process(in []float32, outLen int) []float32 {
	out := make([]float32, outLen)
	if len(in) == 0 {
		return out
	}
	if r.ratio == 1.0 {
		n := copy(out, in)
		if n > 0 {
			r.lastSample = in[n-1]
		}
		return out
	}

	inputLen := len(in)
	natural := int(float64(inputLen) * r.ratio)
	if natural > outLen {
		natural = outLen
	}

	for i := 0; i < natural; i++ {
		srcPos := float64(i) / r.ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		sample1 := r.lastSample
		if srcIdx < inputLen {
			sample1 = in[srcIdx]
		}
		sample2 := sample1
		if srcIdx+1 < inputLen {
			sample2 = in[srcIdx+1]
		} else if srcIdx < inputLen {
			sample2 = in[inputLen-1]
		}

		out[i] = sample1 + (sample2-sample1)*frac
	}

	r.lastSample = in[inputLen-1]
	return out
}

// Close implements dsp.Resampler; the linear resampler holds no external
// resources.
func (r *Resampler) Close() {}
