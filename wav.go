package wavedit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/riff"
)

// HeaderSize is the size in bytes of the canonical RIFF/WAVE header written
// by EncodeFull. Sample i starts at byte HeaderSize + 2*i.
const HeaderSize = 44

const (
	bytesPerSample = 2
	bitsPerSample  = 16
	monoChannels   = 1
	fmtChunkSize   = 16
)

var (
	// ErrPCMDataNotFound is returned when a container has no data chunk.
	ErrPCMDataNotFound = errors.New("PCM data not found")
	// ErrNotMono is returned for sources with more or fewer than one channel.
	ErrNotMono = errors.New("only mono audio is supported")
	// ErrEmptyBuffer is returned when encoding a buffer without samples.
	ErrEmptyBuffer = errors.New("empty sample buffer")
	// ErrMismatchedBuffers is returned when the decoded buffer and the WAV
	// bytes passed to an edit don't describe the same number of samples.
	ErrMismatchedBuffers = errors.New("decoded buffer and wav bytes are out of sync")

	errNilBuffer          = errors.New("can't encode a nil buffer")
	errInvalidSampleRate  = errors.New("invalid sample rate")
	errMissingFormat      = errors.New("buffer has no audio format")
	errShortHeader        = errors.New("wav data shorter than the canonical header")
	errNotCanonicalHeader = errors.New("wav data doesn't start with a canonical 16-bit mono header")
)

// WAV is a serialized mono PCM16LE container with the canonical 44-byte
// header. Values returned by this package are never mutated after they are
// handed out.
type WAV []byte

// SampleRate returns the sample rate stored in the header, or 0 if the
// header is missing.
func (w WAV) SampleRate() int {
	if len(w) < HeaderSize {
		return 0
	}

	return int(binary.LittleEndian.Uint32(w[24:28]))
}

// NumSamples returns the number of 16-bit samples held in the payload.
func (w WAV) NumSamples() int {
	if len(w) < HeaderSize {
		return 0
	}

	return (len(w) - HeaderSize) / bytesPerSample
}

// Duration returns the payload length in seconds.
func (w WAV) Duration() float64 {
	rate := w.SampleRate()
	if rate == 0 {
		return 0
	}

	return float64(w.NumSamples()) / float64(rate)
}

// Validate checks the fixed header fields and both size fields against the
// actual byte length.
func (w WAV) Validate() error {
	if len(w) < HeaderSize {
		return fmt.Errorf("%w: %d bytes", errShortHeader, len(w))
	}

	var id [4]byte

	copy(id[:], w[0:4])
	if id != riff.RiffID {
		return fmt.Errorf("%w: riff id %q", errNotCanonicalHeader, id[:])
	}

	copy(id[:], w[8:12])
	if id != riff.WavFormatID {
		return fmt.Errorf("%w: format %q", errNotCanonicalHeader, id[:])
	}

	if binary.LittleEndian.Uint16(w[20:22]) != wavFormatPCM ||
		binary.LittleEndian.Uint16(w[22:24]) != monoChannels ||
		binary.LittleEndian.Uint16(w[34:36]) != bitsPerSample {
		return errNotCanonicalHeader
	}

	if got := binary.LittleEndian.Uint32(w[4:8]); int(got) != len(w)-8 {
		return fmt.Errorf("%w: riff size %d for %d bytes", errNotCanonicalHeader, got, len(w))
	}

	if got := binary.LittleEndian.Uint32(w[40:44]); int(got) != len(w)-HeaderSize {
		return fmt.Errorf("%w: data size %d for %d bytes", errNotCanonicalHeader, got, len(w))
	}

	return nil
}

func (w WAV) clone() WAV {
	return append(WAV(nil), w...)
}

// byteOffset returns the position of sample i in a canonical WAV.
func byteOffset(i int) int {
	return HeaderSize + i*bytesPerSample
}

// sampleIndex converts seconds to a sample index, flooring like the
// selection markers do.
func sampleIndex(seconds float64, sampleRate int) int {
	return int(math.Floor(seconds * float64(sampleRate)))
}
