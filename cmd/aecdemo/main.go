// aecdemo drives the aecsync pipeline against real audio hardware via
// PortAudio, standing in for "the audio host" collaborator the core
// library never depends on directly.
//
// It plays a test tone out the selected output device and, since most
// desktop platforms don't expose a general-purpose loopback capture device,
// feeds that same tone buffer to the pipeline as the reference signal
// (software loopback) rather than performing a real device loopback
// capture. This is a demo convenience only — see SPEC_FULL.md's Non-goals.
//
// The stream lifecycle (open, WaitGroup-tracked goroutines, stopCh-based
// shutdown) follows the same shape as a typical PortAudio capture/playback
// engine, with a flag-based CLI for device/rate/tone selection.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"

	"aecsync"
	"aecsync/internal/config"
)

func main() {
	saved := config.Load()

	var (
		duration   = flag.Duration("duration", 15*time.Second, "how long to run the demo")
		sampleRate = flag.Int("rate", saved.SampleRate, "capture/playback sample rate in Hz")
		toneHz     = flag.Float64("tone", saved.ToneHz, "frequency of the test tone played and used as the loopback reference")
		inputDev   = flag.Int("input-device", saved.InputDeviceID, "input device index, -1 for system default")
		outputDev  = flag.Int("output-device", saved.OutputDeviceID, "output device index, -1 for system default")
		debug      = flag.Bool("debug", false, "enable pipeline debug logging")
		listDevs   = flag.Bool("list-devices", false, "list audio devices and exit")
		save       = flag.Bool("save", false, "persist the resolved device/rate/tone selection for next time")
	)
	flag.Parse()

	if err := portaudio.Initialize(); err != nil {
		log.Fatalf("[aecdemo] portaudio init: %v", err)
	}
	defer portaudio.Terminate()

	if *listDevs {
		printDevices()
		return
	}

	if *save {
		resolved := config.Config{
			InputDeviceID:  *inputDev,
			OutputDeviceID: *outputDev,
			SampleRate:     *sampleRate,
			ToneHz:         *toneHz,
		}
		if err := config.Save(resolved); err != nil {
			log.Printf("[aecdemo] save config: %v", err)
		}
	}

	cfg := aecsync.Default()
	cfg.CanonicalRate = *sampleRate
	cfg.Mic.Rate = *sampleRate
	cfg.Reference.Rate = *sampleRate
	cfg.Debug = *debug

	pipeline, err := aecsync.New(cfg)
	if err != nil {
		log.Fatalf("[aecdemo] pipeline init: %v", err)
	}
	defer pipeline.Close()
	pipeline.SetDebug(*debug)

	d := &demo{
		pipeline:  pipeline,
		frameSize: cfg.FrameSize(),
		toneHz:    *toneHz,
		rate:      *sampleRate,
	}

	if err := d.start(*inputDev, *outputDev); err != nil {
		log.Fatalf("[aecdemo] start: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-time.After(*duration):
	case <-sigCh:
		log.Println("[aecdemo] interrupted")
	}

	d.stop()

	stats := pipeline.Stats()
	fmt.Printf("processed=%d dropped_mic=%d dropped_ref=%d dropped_output=%d state=%s\n",
		stats.ProcessedFrames, stats.DroppedMicFrames, stats.DroppedRefFrames, stats.DroppedOutputFrames, stats.State)
}

func printDevices() {
	devices, err := portaudio.Devices()
	if err != nil {
		log.Fatalf("[aecdemo] list devices: %v", err)
	}
	for i, d := range devices {
		fmt.Printf("%d: %s (in=%d out=%d)\n", i, d.Name, d.MaxInputChannels, d.MaxOutputChannels)
	}
}

// demo owns the capture/playback PortAudio streams and the goroutines
// driving them.
type demo struct {
	pipeline  *aecsync.Pipeline
	frameSize int
	toneHz    float64
	rate      int

	mu             sync.Mutex
	captureStream  *portaudio.Stream
	playbackStream *portaudio.Stream

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func (d *demo) start(inputDevIdx, outputDevIdx int) error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	inputDev, err := resolveDevice(devices, inputDevIdx, portaudio.DefaultInputDevice)
	if err != nil {
		return err
	}
	outputDev, err := resolveDevice(devices, outputDevIdx, portaudio.DefaultOutputDevice)
	if err != nil {
		return err
	}

	captureBuf := make([]float32, d.frameSize)
	captureParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inputDev,
			Channels: 1,
			Latency:  inputDev.DefaultLowInputLatency,
		},
		SampleRate:      float64(d.rate),
		FramesPerBuffer: d.frameSize,
	}
	captureStream, err := portaudio.OpenStream(captureParams, captureBuf)
	if err != nil {
		return err
	}

	playbackBuf := make([]float32, d.frameSize)
	playbackParams := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: 1,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(d.rate),
		FramesPerBuffer: d.frameSize,
	}
	playbackStream, err := portaudio.OpenStream(playbackParams, playbackBuf)
	if err != nil {
		captureStream.Close()
		return err
	}

	if err := captureStream.Start(); err != nil {
		captureStream.Close()
		playbackStream.Close()
		return err
	}
	if err := playbackStream.Start(); err != nil {
		captureStream.Stop()
		captureStream.Close()
		playbackStream.Close()
		return err
	}

	d.captureStream = captureStream
	d.playbackStream = playbackStream
	d.stopCh = make(chan struct{})
	d.running.Store(true)

	d.wg.Add(2)
	go func() { defer d.wg.Done(); d.captureLoop(captureBuf) }()
	go func() { defer d.wg.Done(); d.playbackLoop(playbackBuf) }()

	log.Printf("[aecdemo] started capture=%s playback=%s", inputDev.Name, outputDev.Name)
	return nil
}

func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

func (d *demo) stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	close(d.stopCh)

	d.mu.Lock()
	if d.captureStream != nil {
		d.captureStream.Stop()
	}
	if d.playbackStream != nil {
		d.playbackStream.Stop()
	}
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	if d.captureStream != nil {
		d.captureStream.Close()
		d.captureStream = nil
	}
	if d.playbackStream != nil {
		d.playbackStream.Close()
		d.playbackStream = nil
	}
	d.mu.Unlock()
}

// captureLoop reads mic frames, feeds them to the pipeline, and drains
// whatever cleaned output is ready to a discard sink (a real host would
// forward it to encoding/transport, which is out of this module's scope).
func (d *demo) captureLoop(buf []float32) {
	micPCM := make([]int16, d.frameSize)
	outPCM := make([]int16, d.frameSize)

	for d.running.Load() {
		if err := d.captureStream.Read(); err != nil {
			if d.running.Load() {
				log.Printf("[aecdemo] capture read: %v", err)
			}
			return
		}
		for i, s := range buf {
			micPCM[i] = floatToS16(s)
		}
		d.pipeline.AddMic(int16Bytes(micPCM), d.frameSize)

		for d.pipeline.PullOutput(outPCM) > 0 {
			// A real host would hand outPCM to its own encode/transport
			// stage here; the demo has none, so it's simply discarded.
		}
	}
}

// playbackLoop emits a test tone and feeds the same samples to the pipeline
// as the reference signal, standing in for a real loopback capture.
func (d *demo) playbackLoop(buf []float32) {
	refPCM := make([]int16, d.frameSize)
	var phase float64
	step := 2 * math.Pi * d.toneHz / float64(d.rate)

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		for i := range buf {
			buf[i] = float32(0.2 * math.Sin(phase))
			phase += step
			refPCM[i] = floatToS16(buf[i])
		}
		if phase > 2*math.Pi {
			phase = math.Mod(phase, 2*math.Pi)
		}

		d.pipeline.AddReference(int16Bytes(refPCM), d.frameSize)

		if err := d.playbackStream.Write(); err != nil {
			if d.running.Load() {
				log.Printf("[aecdemo] playback write: %v", err)
			}
			return
		}
	}
}

func floatToS16(v float32) int16 {
	scaled := v * 32768.0
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}

func int16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
