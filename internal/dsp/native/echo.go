// Package native provides a cgo-free default implementation of the
// aecsync/internal/dsp contracts: an NLMS echo canceller, a preprocessor
// composing gain control and a noise gate, and a linear-interpolation
// resampler. It exists so the pipeline is fully usable without a Speex
// build tag; internal/dsp/speexdsp is the higher-fidelity alternative.
//
// The echo canceller runs a standard NLMS core (weights update via
// w[k] += mu*e*x[k]/(||x||^2+eps)) shaped around the frame-pair
// dsp.EchoCanceller.Cancel(mic, ref, out) contract: the resynchronizer
// already guarantees alignment, so no delay line or far-end ring buffer is
// needed here — the resynchronizer's pairing IS the delay compensation.
package native

const (
	// defaultStep is the NLMS step size mu (0 < mu < 2); conservative for
	// stability at the cost of slower convergence.
	defaultStep = 0.1

	// scale converts between S16 and the [-1,1] float domain the NLMS math
	// runs in.
	scale = 1.0 / 32768.0
)

// EchoCanceller is an NLMS-based acoustic echo canceller operating on
// paired, frame-aligned (mic, ref) buffers of equal length.
//
// Between calls it keeps the trailing tapLen-1 reference samples from the
// previous frame(s) so the filter's tapped-delay line has real history from
// the very first sample of each new frame, instead of restarting from
// silence every call.
type EchoCanceller struct {
	weights []float64
	history []float64 // last tapLen-1 reference samples, oldest first
	tapLen  int
	step    float64
}

// NewEchoCanceller returns an EchoCanceller with a filter length of tapLen
// samples. tapLen is normally the pipeline's configured AEC filter length
// (frameSize * (10 + nominalLag)).
func NewEchoCanceller(tapLen int) *EchoCanceller {
	return &EchoCanceller{
		weights: make([]float64, tapLen),
		history: make([]float64, tapLen-1),
		tapLen:  tapLen,
		step:    defaultStep,
	}
}

// Cancel implements dsp.EchoCanceller. ref is used as the adaptive filter's
// tapped-delay-line input; because ref and mic arrive as a resynchronizer
// pairing, ref already leads mic by the pipeline's nominal lag, so no
// additional delay is applied here.
func (e *EchoCanceller) Cancel(mic, ref []int16, out []int16) {
	n := len(mic)
	window := make([]float64, len(e.history)+n)
	copy(window, e.history)
	for i, s := range ref {
		window[len(e.history)+i] = float64(s) * scale
	}

	for i := 0; i < n; i++ {
		// refBase indexes window at the most-recent tap (k=0) for sample i.
		refBase := len(e.history) + i

		var y, power float64
		for k := 0; k < e.tapLen; k++ {
			x := window[refBase-k]
			y += e.weights[k] * x
			power += x * x
		}

		near := float64(mic[i]) * scale
		err := near - y

		if power > 1e-10 {
			step := e.step * err / power
			for k := 0; k < e.tapLen; k++ {
				e.weights[k] += step * window[refBase-k]
			}
		}

		out[i] = clampS16(err / scale)
	}

	copy(e.history, window[n:])
}

// Reset zeroes the adaptive filter weights and clears the reference history.
func (e *EchoCanceller) Reset() {
	for i := range e.weights {
		e.weights[i] = 0
	}
	for i := range e.history {
		e.history[i] = 0
	}
}

// Close is a no-op; EchoCanceller holds no external resources.
func (e *EchoCanceller) Close() {}

func clampS16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
