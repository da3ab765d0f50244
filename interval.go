package wavedit

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInterval is returned for a missing, degenerate or out of bounds
// selection. No state is modified when it is returned.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a selection in seconds.
type Interval struct {
	Start float64
	End   float64
}

// SampleInterval is an Interval realized as sample indices, End exclusive.
type SampleInterval struct {
	Start int
	End   int
}

// Len returns the number of samples covered by the interval.
func (si SampleInterval) Len() int {
	return si.End - si.Start
}

// ResolveInterval turns two selection points into an ordered Interval
// clamped to the recording. The start is kept at least one second before the
// end of the recording (or at 0 for shorter recordings). It reports false
// unless exactly two finite points are given and a non-empty span remains.
// A selection lying entirely at or past the end is rejected, not clamped.
func ResolveInterval(points []float64, duration float64) (Interval, bool) {
	if len(points) != 2 || !isFinite(duration) || duration <= 0 {
		return Interval{}, false
	}

	if !isFinite(points[0]) || !isFinite(points[1]) {
		return Interval{}, false
	}

	ordered := []float64{points[0], points[1]}
	sort.Float64s(ordered)

	if ordered[0] >= duration {
		return Interval{}, false
	}

	start := clampFloat64(ordered[0], 0, math.Max(0, duration-1))
	end := clampFloat64(ordered[1], 0, duration)

	if start >= end {
		return Interval{}, false
	}

	return Interval{Start: start, End: end}, true
}

// toSamples converts the interval to sample indices for a buffer of
// numSamples samples at sampleRate.
func (iv Interval) toSamples(sampleRate, numSamples int) (SampleInterval, error) {
	if !isFinite(iv.Start) || !isFinite(iv.End) || iv.Start < 0 || iv.Start >= iv.End {
		return SampleInterval{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, iv.Start, iv.End)
	}

	si := SampleInterval{
		Start: sampleIndex(iv.Start, sampleRate),
		End:   min(sampleIndex(iv.End, sampleRate), numSamples),
	}

	if si.Start >= si.End {
		return SampleInterval{}, fmt.Errorf("%w: [%g, %g] covers no samples of %d", ErrInvalidInterval, iv.Start, iv.End, numSamples)
	}

	return si, nil
}
