package wavedit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-audio/audio"
)

var errUnknownEditKind = errors.New("unknown edit kind")

// EditKind identifies an edit operation.
type EditKind int

// Edit kinds. KindUndo only appears in results and events.
const (
	KindDelete EditKind = iota + 1
	KindBeep
	KindFadeIn
	KindFadeOut
	KindVolume
	KindUndo
)

var editKindNames = map[EditKind]string{
	KindDelete:  "delete",
	KindBeep:    "beep",
	KindFadeIn:  "fade-in",
	KindFadeOut: "fade-out",
	KindVolume:  "volume",
	KindUndo:    "undo",
}

func (k EditKind) String() string {
	if name, ok := editKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("EditKind(%d)", int(k))
}

// ParseEditKind parses the names returned by EditKind.String. Underscores
// are accepted in place of dashes.
func ParseEditKind(name string) (EditKind, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for k, n := range editKindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errUnknownEditKind, name)
}

// Edit describes one operation. Volume is the slider level used by
// KindVolume and ignored otherwise.
type Edit struct {
	Kind   EditKind
	Volume int
}

// EditResult is the outcome of one edit or undo. When returned by a Session,
// Buffer and WAV are the session's current state and must not be modified.
type EditResult struct {
	Kind EditKind
	// Range is the selection in sample indices of the pre-edit buffer. It is
	// zero for undo. FadeOut also rewrites the sample at Range.End.
	Range  SampleInterval
	Buffer *audio.Float32Buffer
	WAV    WAV
	// Handle and Time are filled in by a Session.
	Handle          Handle
	Time            float64
	DurationChanged bool
}

const (
	beepStep = 0.002
	beepPeak = 0.02
)

// Apply runs edit on the interval. It is the dispatching form of the
// individual operations.
func Apply(buf *audio.Float32Buffer, data WAV, iv Interval, edit Edit) (*EditResult, error) {
	switch edit.Kind {
	case KindDelete:
		return Delete(buf, data, iv)
	case KindBeep:
		return Beep(buf, data, iv)
	case KindFadeIn:
		return FadeIn(buf, data, iv)
	case KindFadeOut:
		return FadeOut(buf, data, iv)
	case KindVolume:
		factor, err := VolumeFactor(edit.Volume)
		if err != nil {
			return nil, err
		}

		return ChangeVolume(buf, data, iv, factor)
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownEditKind, edit.Kind)
	}
}

// Delete removes the interval from both representations. The bytes are
// spliced directly, only the header size fields are rewritten.
func Delete(buf *audio.Float32Buffer, data WAV, iv Interval) (*EditResult, error) {
	r, err := prepareEdit(buf, data, iv)
	if err != nil {
		return nil, err
	}

	head, err := SliceSamples(buf.Data, 0, r.Start)
	if err != nil {
		return nil, err
	}

	tail, err := SliceSamples(buf.Data, r.End, len(buf.Data))
	if err != nil {
		return nil, err
	}

	prefix, err := SliceBytes(data, 0, byteOffset(r.Start))
	if err != nil {
		return nil, err
	}

	suffix, err := SliceBytes(data, byteOffset(r.End), len(data))
	if err != nil {
		return nil, err
	}

	out := WAV(ConcatBytes(prefix, suffix))
	patchSizes(out)

	return &EditResult{
		Kind:            KindDelete,
		Range:           r,
		Buffer:          newMonoBuffer(ConcatSamples(head, tail), buf.Format.SampleRate),
		WAV:             out,
		DurationChanged: true,
	}, nil
}

// Beep overwrites the interval with a quiet triangle tone. The oscillator
// restarts at 0 on every call.
func Beep(buf *audio.Float32Buffer, data WAV, iv Interval) (*EditResult, error) {
	return editInPlace(KindBeep, buf, data, iv, func(samples []float32, r SampleInterval) SampleInterval {
		value, step := 0.0, beepStep
		for i := r.Start; i < r.End; i++ {
			if value >= beepPeak || value <= -beepPeak {
				step = -step
			}

			value += step
			samples[i] = float32(value)
		}

		return r
	})
}

// FadeIn ramps the interval linearly from 1/n up to 1.
func FadeIn(buf *audio.Float32Buffer, data WAV, iv Interval) (*EditResult, error) {
	return editInPlace(KindFadeIn, buf, data, iv, func(samples []float32, r SampleInterval) SampleInterval {
		step := 1 / float64(r.Len())

		k := 0
		for i := r.Start; i < r.End; i++ {
			k++
			samples[i] = float32(float64(samples[i]) * (float64(k) * step))
		}

		return r
	})
}

// FadeOut applies the FadeIn ramp backwards. The loop walks from r.End down
// to r.Start+1, so the sample at r.End is scaled by 1/n and the one at
// r.Start is left alone. The touched span therefore reaches one sample past
// the interval and is re-synced accordingly.
func FadeOut(buf *audio.Float32Buffer, data WAV, iv Interval) (*EditResult, error) {
	return editInPlace(KindFadeOut, buf, data, iv, func(samples []float32, r SampleInterval) SampleInterval {
		step := 1 / float64(r.Len())

		k := 0
		for i := r.End; i > r.Start; i-- {
			k++
			if i >= len(samples) {
				continue
			}

			samples[i] = float32(float64(samples[i]) * (float64(k) * step))
		}

		return SampleInterval{Start: r.Start, End: min(r.End+1, len(samples))}
	})
}

// ChangeVolume multiplies the interval by factor. Results are clamped to
// [-1, 1] so the decoded buffer matches what the 16-bit bytes can hold.
func ChangeVolume(buf *audio.Float32Buffer, data WAV, iv Interval, factor float64) (*EditResult, error) {
	if !isFinite(factor) || factor < 0 {
		return nil, fmt.Errorf("%w: factor %g", ErrVolumeOutOfRange, factor)
	}

	return editInPlace(KindVolume, buf, data, iv, func(samples []float32, r SampleInterval) SampleInterval {
		for i := r.Start; i < r.End; i++ {
			samples[i] = float32(clampFloat64(float64(samples[i])*factor, -1, 1))
		}

		return r
	})
}

// editInPlace runs a length preserving transform on a copy of the samples
// and re-syncs the span it reports as touched.
func editInPlace(kind EditKind, buf *audio.Float32Buffer, data WAV, iv Interval,
	transform func(samples []float32, r SampleInterval) SampleInterval,
) (*EditResult, error) {
	r, err := prepareEdit(buf, data, iv)
	if err != nil {
		return nil, err
	}

	out := cloneBuffer(buf)
	touched := transform(out.Data, r)

	synced, err := resync(data, out.Data, touched)
	if err != nil {
		return nil, fmt.Errorf("failed to re-sync %s: %w", kind, err)
	}

	return &EditResult{
		Kind:   kind,
		Range:  r,
		Buffer: out,
		WAV:    synced,
	}, nil
}

// resync re-encodes samples[r.Start:r.End] and splices the result between
// the untouched prefix and suffix of data.
func resync(data WAV, samples []float32, r SampleInterval) (WAV, error) {
	prefix, err := SliceBytes(data, 0, byteOffset(r.Start))
	if err != nil {
		return nil, err
	}

	suffix, err := SliceBytes(data, byteOffset(r.End), len(data))
	if err != nil {
		return nil, err
	}

	payload := EncodePayload(samples[r.Start:r.End])

	return WAV(ConcatBytes(ConcatBytes(prefix, payload), suffix)), nil
}

func prepareEdit(buf *audio.Float32Buffer, data WAV, iv Interval) (SampleInterval, error) {
	if buf == nil {
		return SampleInterval{}, errNilBuffer
	}

	if err := checkMonoFormat(buf.Format); err != nil {
		return SampleInterval{}, err
	}

	if len(data) != byteOffset(len(buf.Data)) {
		return SampleInterval{}, fmt.Errorf("%w: %d samples, %d bytes", ErrMismatchedBuffers, len(buf.Data), len(data))
	}

	return iv.toSamples(buf.Format.SampleRate, len(buf.Data))
}
