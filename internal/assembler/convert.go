package assembler

import (
	"encoding/binary"
	"math"
)

// int16BytesToFloat32 reinterprets raw as little-endian S16 interleaved
// samples, scaled to the [-1,1] domain by 1/32768.
func int16BytesToFloat32(raw []byte) []float32 {
	out := make([]float32, len(raw)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(s) * (1.0 / 32768.0)
	}
	return out
}

// bytesToFloat32 reinterprets raw as little-endian F32 interleaved samples.
func bytesToFloat32(raw []byte) []float32 {
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}
