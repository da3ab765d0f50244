package wavedit

import (
	"math"
	"testing"

	"github.com/go-audio/audio"
)

// oneLSB is the largest deviation allowed between a decoded sample and its
// 16-bit serialization, with headroom for float32 rounding.
const oneLSB = 1.0/32767 + 1e-6

func float32ApproxEqual(value, expected, epsilon float32) bool {
	return float32(math.Abs(float64(value-expected))) <= epsilon
}

func sineBuffer(sampleRate, n int) *audio.Float32Buffer {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(0.8 * math.Sin(float64(i)/float64(sampleRate)*440*2*math.Pi))
	}

	return newMonoBuffer(data, sampleRate)
}

func constBuffer(sampleRate, n int, v float32) *audio.Float32Buffer {
	data := make([]float32, n)
	for i := range data {
		data[i] = v
	}

	return newMonoBuffer(data, sampleRate)
}

func mustEncode(t *testing.T, buf *audio.Float32Buffer) WAV {
	t.Helper()

	data, err := EncodeFull(buf)
	if err != nil {
		t.Fatalf("EncodeFull: %v", err)
	}

	return data
}

// assertConsistent checks that data is a valid canonical WAV whose payload
// decodes to buf within one LSB.
func assertConsistent(t *testing.T, buf *audio.Float32Buffer, data WAV) {
	t.Helper()

	if err := data.Validate(); err != nil {
		t.Fatalf("invalid wav: %v", err)
	}

	if want := HeaderSize + 2*len(buf.Data); len(data) != want {
		t.Fatalf("len(wav)=%d, want %d", len(data), want)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Data) != len(buf.Data) {
		t.Fatalf("decoded %d samples, want %d", len(decoded.Data), len(buf.Data))
	}

	for i := range buf.Data {
		if !float32ApproxEqual(decoded.Data[i], clampFloat32(buf.Data[i], -1, 1), oneLSB) {
			t.Fatalf("sample %d: decoded %f, buffer %f", i, decoded.Data[i], buf.Data[i])
		}
	}
}
