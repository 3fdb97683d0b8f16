package engine

import (
	"testing"

	"aecsync/internal/dsp"
	"aecsync/internal/frame"
	"aecsync/internal/resync"
)

type fakeEcho struct {
	calls    int
	resets   int
	closed   bool
	subtract int16
}

func (f *fakeEcho) Cancel(mic, ref []int16, out []int16) {
	f.calls++
	for i := range out {
		out[i] = mic[i] - f.subtract
	}
}
func (f *fakeEcho) Reset() { f.resets++ }
func (f *fakeEcho) Close() { f.closed = true }

type fakePre struct {
	runs         int
	resets       int
	closed       bool
	associated   bool
	vadProb      float32
	addPerSample int16
}

func (p *fakePre) AssociateEcho(e dsp.EchoCanceller) { p.associated = e != nil }
func (p *fakePre) Configure(dsp.PreprocessConfig)    {}
func (p *fakePre) Run(buf []int16) {
	p.runs++
	for i := range buf {
		buf[i] += p.addPerSample
	}
}
func (p *fakePre) VADProbability() float32 { return p.vadProb }
func (p *fakePre) Reset()                  { p.resets++ }
func (p *fakePre) Close()                  { p.closed = true }

func mkFrame(v int16, n int) frame.Frame {
	f := frame.New(n)
	s := f.Samples()
	for i := range s {
		s[i] = v
	}
	return f
}

func TestProcessCancelsWhenRefPresent(t *testing.T) {
	echo := &fakeEcho{subtract: 10}
	pre := &fakePre{}
	e := New(echo, pre)

	chunk := resync.Chunk{Mic: mkFrame(100, 4), Ref: mkFrame(5, 4)}
	out := e.Process(chunk)

	if echo.calls != 1 {
		t.Fatalf("expected 1 Cancel call, got %d", echo.calls)
	}
	if pre.runs != 1 {
		t.Fatalf("expected 1 Run call, got %d", pre.runs)
	}
	want := int16(100 - 10)
	for _, s := range out.Samples() {
		if s != want {
			t.Errorf("got %d, want %d", s, want)
		}
	}
	if !pre.associated {
		t.Fatal("expected engine to associate the echo canceller with the preprocessor")
	}
}

func TestProcessSkipsCancelWithoutRef(t *testing.T) {
	echo := &fakeEcho{}
	pre := &fakePre{}
	e := New(echo, pre)

	chunk := resync.Chunk{Mic: mkFrame(50, 4)}
	out := e.Process(chunk)

	if echo.calls != 0 {
		t.Fatalf("expected no Cancel call without a reference frame, got %d", echo.calls)
	}
	for _, s := range out.Samples() {
		if s != 50 {
			t.Errorf("got %d, want mic passthrough 50", s)
		}
	}
}

func TestProcessEmptyChunkYieldsInvalidFrame(t *testing.T) {
	e := New(nil, nil)
	out := e.Process(resync.Chunk{Empty: true})
	if out.Valid() {
		t.Fatal("expected invalid frame for an empty chunk")
	}
}

func TestSetAECEnabledDisablesCancellation(t *testing.T) {
	echo := &fakeEcho{}
	e := New(echo, nil)
	e.SetAECEnabled(false)

	chunk := resync.Chunk{Mic: mkFrame(1, 4), Ref: mkFrame(1, 4)}
	e.Process(chunk)
	if echo.calls != 0 {
		t.Fatalf("expected cancellation disabled, got %d calls", echo.calls)
	}
}

func TestResetDelegatesToEchoAndPreprocessor(t *testing.T) {
	echo := &fakeEcho{}
	pre := &fakePre{}
	e := New(echo, pre)
	e.Reset()
	if echo.resets != 1 {
		t.Fatalf("expected 1 echo reset, got %d", echo.resets)
	}
	if pre.resets != 1 {
		t.Fatalf("expected 1 preprocessor reset, got %d", pre.resets)
	}
}

func TestCloseReleasesBoth(t *testing.T) {
	echo := &fakeEcho{}
	pre := &fakePre{}
	e := New(echo, pre)
	e.Close()
	if !echo.closed || !pre.closed {
		t.Fatal("expected both echo canceller and preprocessor closed")
	}
}

func TestVADProbabilityDelegatesToPreprocessor(t *testing.T) {
	pre := &fakePre{vadProb: 0.75}
	e := New(nil, pre)
	if got := e.VADProbability(); got != 0.75 {
		t.Fatalf("got %v, want 0.75", got)
	}
}

func TestVADProbabilityZeroWithoutPreprocessor(t *testing.T) {
	e := New(nil, nil)
	if got := e.VADProbability(); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}
