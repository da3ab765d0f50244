package wavedit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-audio/riff"
)

type testChunk struct {
	id   string
	data []byte
}

// buildWAV assembles a RIFF/WAVE container from a fmt description and
// arbitrary chunks, padding odd chunks like a writer must.
func buildWAV(formatTag, channels uint16, sampleRate uint32, bitDepth uint16, chunks ...testChunk) []byte {
	fmtData := new(bytes.Buffer)
	blockAlign := channels * ((bitDepth + 7) / 8)
	binary.Write(fmtData, binary.LittleEndian, formatTag)
	binary.Write(fmtData, binary.LittleEndian, channels)
	binary.Write(fmtData, binary.LittleEndian, sampleRate)
	binary.Write(fmtData, binary.LittleEndian, sampleRate*uint32(blockAlign))
	binary.Write(fmtData, binary.LittleEndian, blockAlign)
	binary.Write(fmtData, binary.LittleEndian, bitDepth)

	body := new(bytes.Buffer)
	body.WriteString("WAVE")

	all := append([]testChunk{{id: "fmt ", data: fmtData.Bytes()}}, chunks...)
	for _, c := range all {
		body.WriteString(c.id)
		binary.Write(body, binary.LittleEndian, uint32(len(c.data)))
		body.Write(c.data)

		if len(c.data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

func le16(values ...int16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}

	return out
}

func TestDecodeFormats(t *testing.T) {
	float32Data := make([]byte, 8)
	binary.LittleEndian.PutUint32(float32Data[0:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(float32Data[4:], math.Float32bits(-2))

	float64Data := make([]byte, 8)
	binary.LittleEndian.PutUint64(float64Data, math.Float64bits(-0.5))

	tests := []struct {
		name string
		data []byte
		rate int
		want []float32
	}{
		{
			name: "16 bit",
			data: buildWAV(1, 1, 8000, 16, testChunk{"data", le16(0, 32767, -32768, 16384)}),
			rate: 8000,
			want: []float32{0, 1, -1, 16384.5 / 32767},
		},
		{
			name: "8 bit unsigned",
			data: buildWAV(1, 1, 11025, 8, testChunk{"data", []byte{0, 255}}),
			rate: 11025,
			want: []float32{-1, 1},
		},
		{
			name: "24 bit",
			data: buildWAV(1, 1, 48000, 24, testChunk{"data", []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}}),
			rate: 48000,
			want: []float32{0.5, -0.5},
		},
		{
			name: "float32 clamped",
			data: buildWAV(3, 1, 44100, 32, testChunk{"data", float32Data}),
			rate: 44100,
			want: []float32{0.25, -1},
		},
		{
			name: "float64",
			data: buildWAV(3, 1, 44100, 64, testChunk{"data", float64Data}),
			rate: 44100,
			want: []float32{-0.5},
		},
		{
			name: "skips chunks before data",
			data: buildWAV(1, 1, 8000, 16,
				testChunk{"LIST", []byte("INFOjunk")},
				testChunk{"data", le16(100, -100)}),
			rate: 8000,
			want: []float32{100.5 / 32767, -100.5 / 32767},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}

			if buf.Format.SampleRate != tt.rate || buf.Format.NumChannels != 1 {
				t.Fatalf("format=%+v, want mono %d Hz", buf.Format, tt.rate)
			}

			if len(buf.Data) != len(tt.want) {
				t.Fatalf("got %d samples, want %d", len(buf.Data), len(tt.want))
			}

			for i := range tt.want {
				if !float32ApproxEqual(buf.Data[i], tt.want[i], 1e-6) {
					t.Fatalf("sample %d=%f, want %f", i, buf.Data[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	notRIFF := buildWAV(1, 1, 8000, 16, testChunk{"data", le16(1)})
	copy(notRIFF, "RIFX")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"stereo", buildWAV(1, 2, 8000, 16, testChunk{"data", le16(1, 2)}), ErrNotMono},
		{"not riff", notRIFF, riff.ErrFmtNotSupported},
		{"no data chunk", buildWAV(1, 1, 8000, 16), ErrPCMDataNotFound},
		{"a-law", buildWAV(6, 1, 8000, 8, testChunk{"data", []byte{1, 2}}), errUnsupportedWavFormat},
		{"12 bit float", buildWAV(3, 1, 8000, 12, testChunk{"data", []byte{1, 2}}), errUnhandledFloatBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode err=%v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoderReadInfo(t *testing.T) {
	data := mustEncode(t, constBuffer(22050, 100, 0.1))

	dec := NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()

	if err := dec.Err(); err != nil {
		t.Fatal(err)
	}

	if dec.SampleRate != 22050 || dec.NumChans != 1 || dec.BitDepth != 16 || dec.WavAudioFormat != 1 {
		t.Fatalf("unexpected header %+v", dec.Format())
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}

	if len(buf.Data) != 100 || dec.PCMSize != 200 {
		t.Fatalf("got %d samples from %d bytes", len(buf.Data), dec.PCMSize)
	}
}
