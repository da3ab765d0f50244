package wavedit

import "math"

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
	floatPCM8Center    = 127.5
	scalePCMInt8       = 127.5
	scalePCMInt16Neg   = 32768.0
	scalePCMInt16Pos   = 32767.0
	scalePCMInt24      = 8388608.0
	scalePCMInt32      = 2147483648.0
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

func clampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Quantize16 converts a float sample to a signed 16-bit PCM value.
//
// The sample is clamped to [-1, 1], scaled by 32768 when 0.5+x is negative
// and by 32767 otherwise, then truncated toward zero. NaN maps to silence.
func Quantize16(value float32) int16 {
	if value != value {
		return 0
	}

	x := float64(clampFloat32(value, -1, 1))
	if 0.5+x < 0 {
		return int16(x * scalePCMInt16Neg)
	}

	return int16(x * scalePCMInt16Pos)
}

// normalizePCMInt maps an integer sample of the given storage depth to
// [-1, 1]. See decodePCMInt16 for 16-bit values.
func normalizePCMInt(sample int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32((float64(sample) - floatPCM8Center) / scalePCMInt8)
	case 16:
		return decodePCMInt16(sample)
	case 24:
		return float32(float64(sample) / scalePCMInt24)
	case 32:
		return float32(float64(sample) / scalePCMInt32)
	default:
		return 0
	}
}

// decodePCMInt16 returns the middle of the range of floats Quantize16
// truncates to sample. Quantize16 of the result is sample again, and any
// float differs from the decode of its quantization by less than one LSB.
func decodePCMInt16(sample int) float32 {
	var v float64

	switch {
	case sample > 0:
		v = (float64(sample) + 0.5) / scalePCMInt16Pos
	case sample == 0:
		return 0
	case sample >= -16383:
		v = (float64(sample) - 0.5) / scalePCMInt16Pos
	default:
		v = (float64(sample) - 0.5) / scalePCMInt16Neg
	}

	return float32(clampFloat64(v, -1, 1))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
