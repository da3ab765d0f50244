package wavedit

import (
	"errors"
	"testing"
)

func TestVolumeFactor(t *testing.T) {
	tests := []struct {
		level int
		want  float64
		err   error
	}{
		{-5, 1.0 / 6, nil},
		{-2, 1.0 / 3, nil},
		{-1, 0.5, nil},
		{1, 2, nil},
		{3, 4, nil},
		{5, 6, nil},
		{0, 0, ErrNoVolumeChange},
		{6, 0, ErrVolumeOutOfRange},
		{-6, 0, ErrVolumeOutOfRange},
	}

	for _, tt := range tests {
		got, err := VolumeFactor(tt.level)
		if !errors.Is(err, tt.err) {
			t.Errorf("VolumeFactor(%d) err=%v, want %v", tt.level, err, tt.err)

			continue
		}

		if got != tt.want {
			t.Errorf("VolumeFactor(%d)=%g, want %g", tt.level, got, tt.want)
		}
	}
}
