package native

import (
	"math"
	"testing"

	"aecsync/internal/dsp"
)

func sineS16(amplitude float64, size int) []int16 {
	out := make([]int16, size)
	for i := range out {
		t := float64(i) / 48000.0
		out[i] = int16(amplitude * math.Sin(2*math.Pi*440*t))
	}
	return out
}

func TestPreprocessorGatesQuietFrames(t *testing.T) {
	p := NewPreprocessor(dsp.DefaultPreprocessConfig())
	frame := sineS16(5, 480) // far below gate threshold
	p.Run(frame)
	for i, s := range frame {
		if s != 0 {
			t.Fatalf("frame[%d] = %d, expected gated to 0", i, s)
		}
	}
}

func TestPreprocessorPassesLoudFrames(t *testing.T) {
	p := NewPreprocessor(dsp.DefaultPreprocessConfig())
	frame := sineS16(16000, 480)
	nonZero := false
	p.Run(frame)
	for _, s := range frame {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected loud frame to pass through non-zeroed")
	}
}

func TestPreprocessorDenoiseDisabledSkipsGate(t *testing.T) {
	cfg := dsp.DefaultPreprocessConfig()
	cfg.Denoise = false
	cfg.AGC = false
	p := NewPreprocessor(cfg)
	frame := sineS16(5, 480)
	orig := make([]int16, len(frame))
	copy(orig, frame)
	p.Run(frame)
	for i, s := range frame {
		if math.Abs(float64(s-orig[i])) > 1 {
			t.Fatalf("sample %d changed with denoise/agc disabled: %d -> %d", i, orig[i], s)
		}
	}
}

func TestPreprocessorVADProbabilityTracksEnergy(t *testing.T) {
	p := NewPreprocessor(dsp.DefaultPreprocessConfig())
	quiet := sineS16(5, 480)
	p.Run(quiet)
	quietProb := p.VADProbability()

	loud := sineS16(16000, 480)
	p.Run(loud)
	loudProb := p.VADProbability()

	if loudProb <= quietProb {
		t.Fatalf("expected loud frame VAD probability (%v) > quiet (%v)", loudProb, quietProb)
	}
}

func TestPreprocessorAssociateEchoIsNoop(t *testing.T) {
	p := NewPreprocessor(dsp.DefaultPreprocessConfig())
	e := NewEchoCanceller(testTapLen)
	p.AssociateEcho(e)
	p.AssociateEcho(nil)
}
