package wavedit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	errUnhandledByteDepth     = errors.New("unhandled byte depth")
	errUnhandledFloatBitDepth = errors.New("unhandled float bit depth")
	errUnsupportedWavFormat   = errors.New("unsupported wav format")
	errFmtChunkNotFound       = errors.New("fmt chunk not found")
)

// Decoder reads a WAV container into a mono float buffer. It accepts
// integer PCM (8, 16, 24 and 32 bits) and IEEE float (32 and 64 bits).
type Decoder struct {
	r      io.ReadSeeker
	parser *riff.Parser

	NumChans       uint16
	BitDepth       uint16
	SampleRate     uint32
	WavAudioFormat uint16

	// PCMSize is the size in bytes of the data chunk, including padding.
	PCMSize int

	err      error
	pcmChunk *riff.Chunk
}

// NewDecoder creates a decoder for the passed wav reader.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{
		r:      r,
		parser: riff.New(r),
	}
}

// Decode decodes an in-memory WAV container.
func Decode(data []byte) (*audio.Float32Buffer, error) {
	return NewDecoder(bytes.NewReader(data)).FullPCMBuffer()
}

// Err returns the first non-EOF error that was encountered by the Decoder.
func (d *Decoder) Err() error {
	if errors.Is(d.err, io.EOF) {
		return nil
	}

	return d.err
}

// ReadInfo reads the underlying reader until the fmt chunk is parsed.
// This method is safe to call multiple times.
func (d *Decoder) ReadInfo() {
	d.err = d.readHeaders()
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// FullPCMBuffer reads the whole data chunk and returns it as a mono buffer.
func (d *Decoder) FullPCMBuffer() (*audio.Float32Buffer, error) {
	if d.pcmChunk == nil {
		if err := d.fwdToPCM(); err != nil {
			return nil, err
		}
	}

	if d.NumChans != monoChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrNotMono, d.NumChans)
	}

	decodeF, err := sampleDecodeFloat32Func(int(d.BitDepth), d.WavAudioFormat)
	if err != nil {
		return nil, fmt.Errorf("could not get sample decode func %w", err)
	}

	bPerSample := bytesPerSampleOf(int(d.BitDepth))

	raw := make([]byte, d.PCMSize)

	n, err := io.ReadFull(d.pcmChunk.R, raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	// a trailing partial sample is the chunk's pad byte, not audio
	samples := make([]float32, n/bPerSample)
	for i := range samples {
		samples[i] = decodeF(raw[i*bPerSample : (i+1)*bPerSample])
	}

	buf := newMonoBuffer(samples, int(d.SampleRate))
	buf.SourceBitDepth = int(d.BitDepth)

	return buf, nil
}

func (d *Decoder) fwdToPCM() error {
	d.err = d.readHeaders()
	if d.err != nil {
		return d.err
	}

	for {
		chunk, err := d.parser.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.err = ErrPCMDataNotFound
			} else {
				d.err = fmt.Errorf("error reading chunk header - %w", err)
			}

			return d.err
		}

		if chunk.ID == riff.DataFormatID {
			d.PCMSize = chunk.Size
			d.pcmChunk = chunk

			return nil
		}

		chunk.Drain()
	}
}

// readHeaders is safe to call multiple times.
func (d *Decoder) readHeaders() error {
	if d == nil || d.NumChans > 0 {
		return nil
	}

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("failed to read chunk ID and size: %w", err)
	}

	d.parser.ID = id
	if d.parser.ID != riff.RiffID {
		return fmt.Errorf("%s - %w", d.parser.ID, riff.ErrFmtNotSupported)
	}

	d.parser.Size = size

	err = binary.Read(d.r, binary.BigEndian, &d.parser.Format)
	if err != nil {
		return fmt.Errorf("failed to read format: %w", err)
	}

	if d.parser.Format != riff.WavFormatID {
		return fmt.Errorf("%s - %w", d.parser.Format, riff.ErrFmtNotSupported)
	}

	for {
		chunk, err := d.parser.NextChunk()
		if err != nil {
			return fmt.Errorf("%w: %w", errFmtChunkNotFound, err)
		}

		if chunk.ID != riff.FmtID {
			chunk.Drain()

			continue
		}

		return d.decodeFmtChunk(chunk)
	}
}

func (d *Decoder) decodeFmtChunk(chunk *riff.Chunk) error {
	var (
		formatTag      uint16
		numChannels    uint16
		sampleRate     uint32
		avgBytesPerSec uint32
		blockAlign     uint16
		bitsPerSample  uint16
	)

	fields := []struct {
		name string
		dst  any
	}{
		{"wav format", &formatTag},
		{"channels", &numChannels},
		{"sample rate", &sampleRate},
		{"avg bytes/sec", &avgBytesPerSec},
		{"block align", &blockAlign},
		{"bit depth", &bitsPerSample},
	}

	for _, f := range fields {
		if err := chunk.ReadLE(f.dst); err != nil {
			return fmt.Errorf("failed to read %s: %w", f.name, err)
		}
	}

	chunk.Drain()

	d.parser.WavAudioFormat = formatTag
	d.parser.NumChannels = numChannels
	d.parser.SampleRate = sampleRate
	d.parser.AvgBytesPerSec = avgBytesPerSec
	d.parser.BlockAlign = blockAlign
	d.parser.BitsPerSample = bitsPerSample

	d.WavAudioFormat = formatTag
	d.NumChans = numChannels
	d.SampleRate = sampleRate
	d.BitDepth = bitsPerSample

	if d.NumChans == 0 {
		return fmt.Errorf("%w: 0 channels", ErrNotMono)
	}

	return nil
}

func bytesPerSampleOf(bitDepth int) int {
	return (bitDepth-1)/8 + 1
}

// sampleDecodeFloat32Func returns a function converting one little endian
// sample to a normalized float32 value.
func sampleDecodeFloat32Func(bitsPerSample int, wavFormat uint16) (func([]byte) float32, error) {
	if wavFormat == wavFormatIEEEFloat {
		switch bitsPerSample {
		case 32:
			return func(b []byte) float32 {
				return clampFloat32(math.Float32frombits(binary.LittleEndian.Uint32(b)), -1, 1)
			}, nil
		case 64:
			return func(b []byte) float32 {
				return float32(clampFloat64(math.Float64frombits(binary.LittleEndian.Uint64(b)), -1, 1))
			}, nil
		default:
			return nil, fmt.Errorf("%w: %d", errUnhandledFloatBitDepth, bitsPerSample)
		}
	}

	if wavFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %d", errUnsupportedWavFormat, wavFormat)
	}

	// NOTE: 8bit values are unsigned, all other depths are signed.
	switch {
	case bitsPerSample == 8:
		return func(b []byte) float32 {
			return normalizePCMInt(int(b[0]), 8)
		}, nil
	case bitsPerSample > 8 && bitsPerSample <= 16:
		return func(b []byte) float32 {
			return normalizePCMInt(int(int16(binary.LittleEndian.Uint16(b))), 16)
		}, nil
	case bitsPerSample > 16 && bitsPerSample <= 24:
		return func(b []byte) float32 {
			return normalizePCMInt(int(audio.Int24LETo32(b)), 24)
		}, nil
	case bitsPerSample > 24 && bitsPerSample <= 32:
		return func(b []byte) float32 {
			return normalizePCMInt(int(int32(binary.LittleEndian.Uint32(b))), 32)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnhandledByteDepth, bitsPerSample)
	}
}
