package wavedit

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// EncodeFull serializes a mono buffer into a canonical 16-bit PCM WAV. The
// result is always HeaderSize + 2*len(buf.Data) bytes long.
func EncodeFull(buf *audio.Float32Buffer) (WAV, error) {
	if buf == nil {
		return nil, errNilBuffer
	}

	if err := checkMonoFormat(buf.Format); err != nil {
		return nil, err
	}

	if len(buf.Data) == 0 {
		return nil, ErrEmptyBuffer
	}

	out := make(WAV, byteOffset(len(buf.Data)))
	putHeader(out, buf.Format.SampleRate, len(buf.Data)*bytesPerSample)
	putSamples(out[HeaderSize:], buf.Data)

	return out, nil
}

// EncodePayload converts samples to PCM16LE without a header. It is used to
// re-sync an edited span into previously serialized bytes.
func EncodePayload(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	putSamples(out, samples)

	return out
}

// WriteTo writes the serialized container to w.
func (w WAV) WriteTo(wr io.Writer) (int64, error) {
	n, err := wr.Write(w)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write wav data: %w", err)
	}

	return int64(n), nil
}

// putSamples writes one 16-bit little endian value per sample. dst is sized
// by the caller from the sample count so every offset is in range.
func putSamples(dst []byte, samples []float32) {
	for i, v := range samples {
		binary.LittleEndian.PutUint16(dst[i*bytesPerSample:], uint16(Quantize16(v)))
	}
}

func putHeader(dst []byte, sampleRate, payloadLen int) {
	copy(dst[0:4], riff.RiffID[:])
	binary.LittleEndian.PutUint32(dst[4:8], uint32(HeaderSize+payloadLen-8))
	copy(dst[8:12], riff.WavFormatID[:])

	copy(dst[12:16], riff.FmtID[:])
	binary.LittleEndian.PutUint32(dst[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(dst[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(dst[22:24], monoChannels)
	binary.LittleEndian.PutUint32(dst[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(sampleRate*bytesPerSample*monoChannels))
	binary.LittleEndian.PutUint16(dst[32:34], monoChannels*bytesPerSample)
	binary.LittleEndian.PutUint16(dst[34:36], bitsPerSample)

	copy(dst[36:40], riff.DataFormatID[:])
	binary.LittleEndian.PutUint32(dst[40:44], uint32(payloadLen))
}

// patchSizes rewrites the RIFF and data chunk sizes after the payload length
// changed.
func patchSizes(w WAV) {
	binary.LittleEndian.PutUint32(w[4:8], uint32(len(w)-8))
	binary.LittleEndian.PutUint32(w[40:44], uint32(len(w)-HeaderSize))
}

func checkMonoFormat(format *audio.Format) error {
	if format == nil {
		return errMissingFormat
	}

	if format.NumChannels != monoChannels {
		return fmt.Errorf("%w: %d channels", ErrNotMono, format.NumChannels)
	}

	if format.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", errInvalidSampleRate, format.SampleRate)
	}

	return nil
}

func newMonoBuffer(samples []float32, sampleRate int) *audio.Float32Buffer {
	return &audio.Float32Buffer{
		Data: samples,
		Format: &audio.Format{
			NumChannels: monoChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitsPerSample,
	}
}

func cloneBuffer(buf *audio.Float32Buffer) *audio.Float32Buffer {
	if buf == nil {
		return nil
	}

	return newMonoBuffer(append([]float32(nil), buf.Data...), buf.Format.SampleRate)
}
