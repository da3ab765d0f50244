package wavedit

import (
	"errors"
	"fmt"
)

// ErrRange is returned when a slice bound falls outside [0, len] or the
// bounds are inverted.
var ErrRange = errors.New("slice bounds out of range")

// SliceBytes returns a copy of b[from:to].
func SliceBytes(b []byte, from, to int) ([]byte, error) {
	if err := checkBounds(len(b), from, to); err != nil {
		return nil, err
	}

	return append(make([]byte, 0, to-from), b[from:to]...), nil
}

// ConcatBytes returns a new slice holding a followed by b.
func ConcatBytes(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b))
	copy(out, a)
	copy(out[len(a):], b)

	return out
}

// SliceSamples returns a copy of s[from:to].
func SliceSamples(s []float32, from, to int) ([]float32, error) {
	if err := checkBounds(len(s), from, to); err != nil {
		return nil, err
	}

	return append(make([]float32, 0, to-from), s[from:to]...), nil
}

// ConcatSamples returns a new slice holding a followed by b.
func ConcatSamples(a, b []float32) []float32 {
	out := make([]float32, len(a)+len(b))
	copy(out, a)
	copy(out[len(a):], b)

	return out
}

func checkBounds(length, from, to int) error {
	if from < 0 || to > length || from > to {
		return fmt.Errorf("%w: [%d:%d] with length %d", ErrRange, from, to, length)
	}

	return nil
}
