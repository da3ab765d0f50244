package wavedit

import (
	"errors"
	"fmt"
)

// MaxVolumeLevel bounds the discrete volume slider on both sides.
const MaxVolumeLevel = 5

var (
	// ErrNoVolumeChange is returned for volume level 0, which would leave the
	// selection untouched.
	ErrNoVolumeChange = errors.New("volume level must be different from zero")
	// ErrVolumeOutOfRange is returned for levels beyond ±MaxVolumeLevel.
	ErrVolumeOutOfRange = errors.New("volume level out of range")
)

// VolumeFactor maps a slider level in [-5, 5] to a gain: negative levels
// divide by |v|+1, positive levels multiply by v+1.
func VolumeFactor(level int) (float64, error) {
	switch {
	case level == 0:
		return 0, ErrNoVolumeChange
	case level < -MaxVolumeLevel || level > MaxVolumeLevel:
		return 0, fmt.Errorf("%w: %d", ErrVolumeOutOfRange, level)
	case level < 0:
		return 1 / float64(-level+1), nil
	default:
		return float64(level + 1), nil
	}
}
