package native

import (
	"math"

	"aecsync/internal/dsp"
)

// Preprocessor composes gain control, a noise gate (standing in for
// spectral denoise in this cgo-free build) and an energy-based VAD into the
// dsp.Preprocessor contract. The gate/AGC/VAD stages operate on float32
// PCM; this preprocessor converts to/from the pipeline's S16 frames at its
// boundary.
type Preprocessor struct {
	cfg  dsp.PreprocessConfig
	echo dsp.EchoCanceller

	gain float64 // AGC linear gain multiplier

	gateOpen bool
	gateHold int

	vadProb float32
}

const (
	agcMinGain     = 0.1
	agcMaxGainMult = 10.0
	agcAttack      = 0.80
	agcRelease     = 0.02
	agcMinRMS      = 0.001

	gateHoldFrames  = 10
	gateThresholdDB = 0.01 // linear RMS threshold, ~-40 dBFS

	vadThreshold = float32(0.005)
)

// NewPreprocessor returns a Preprocessor configured per cfg.
func NewPreprocessor(cfg dsp.PreprocessConfig) *Preprocessor {
	return &Preprocessor{cfg: cfg, gain: 1.0}
}

// AssociateEcho implements dsp.Preprocessor. The native gate/AGC/VAD chain
// doesn't consult echo state directly (that cooperation is Speex-specific);
// the reference is stored but not otherwise used.
func (p *Preprocessor) AssociateEcho(echo dsp.EchoCanceller) {
	p.echo = echo
}

// Configure implements dsp.Preprocessor.
func (p *Preprocessor) Configure(cfg dsp.PreprocessConfig) {
	p.cfg = cfg
}

// VADProbability implements dsp.Preprocessor.
func (p *Preprocessor) VADProbability() float32 {
	return p.vadProb
}

// Reset implements dsp.Preprocessor: restores the AGC gain, noise gate and
// VAD state to their post-Configure starting point.
func (p *Preprocessor) Reset() {
	p.gain = 1.0
	p.gateOpen = false
	p.gateHold = 0
	p.vadProb = 0
}

// Close implements dsp.Preprocessor; the native chain holds no external
// resources.
func (p *Preprocessor) Close() {}

// Run implements dsp.Preprocessor: VAD (measured on the frame's input
// energy, before any gating), then noise gate, then AGC. VAD only updates
// VADProbability; it never itself drops frames.
func (p *Preprocessor) Run(frame []int16) {
	buf := make([]float32, len(frame))
	for i, s := range frame {
		buf[i] = float32(s) * float32(scale)
	}

	rms := rmsOf(buf)
	p.vadProb = vadProbability(rms)

	if p.cfg.Denoise {
		p.gate(buf, rms)
	}
	if p.cfg.AGC {
		p.agc(buf)
	}

	for i, s := range buf {
		frame[i] = clampS16(float64(s) * 32768.0)
	}
}

func (p *Preprocessor) gate(buf []float32, rms float32) {
	if rms >= gateThresholdDB {
		p.gateHold = gateHoldFrames
		p.gateOpen = true
		return
	}
	if p.gateHold > 0 {
		p.gateHold--
		p.gateOpen = true
		return
	}
	p.gateOpen = false
	for i := range buf {
		buf[i] = 0
	}
}

func (p *Preprocessor) agc(buf []float32) {
	rms := float64(rmsOf(buf))

	target := float64(p.cfg.AGCTarget) / 32768.0
	if target <= 0 {
		target = 0.20
	}

	for i, s := range buf {
		v := s * float32(p.gain)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		buf[i] = v
	}

	if rms < agcMinRMS {
		return
	}

	desired := target / rms
	if desired < agcMinGain {
		desired = agcMinGain
	} else if desired > agcMaxGainMult {
		desired = agcMaxGainMult
	}

	coeff := agcRelease
	if desired < p.gain {
		coeff = agcAttack
	}
	p.gain += coeff * (desired - p.gain)
}

func vadProbability(rms float32) float32 {
	if rms <= 0 {
		return 0
	}
	// Simple saturating ratio against an RMS energy threshold to decide
	// speech vs. silence.
	prob := rms / (vadThreshold * 4)
	if prob > 1 {
		prob = 1
	}
	return prob
}

func rmsOf(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(buf))))
}
