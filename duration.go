package wavedit

import (
	"math"
	"strconv"
	"strings"
)

// DurationInfo splits a duration for display.
type DurationInfo struct {
	Seconds float64
	Hours   int
	Minutes int
	Secs    int
	// Formatted is H:MM:SS, M:SS or SS, hours and minutes omitted while zero.
	Formatted string
}

// FormatDuration rounds seconds to the nearest whole second and formats it.
func FormatDuration(seconds float64) DurationInfo {
	info := DurationInfo{Seconds: seconds}
	if !isFinite(seconds) || seconds < 0 {
		info.Formatted = "00"

		return info
	}

	total := int(math.Round(seconds))
	info.Hours = total / 3600
	info.Minutes = total / 60 % 60
	info.Secs = total % 60

	var parts []string

	if info.Hours > 0 {
		parts = append(parts, strconv.Itoa(info.Hours), pad2(info.Minutes))
	} else if info.Minutes > 0 {
		parts = append(parts, strconv.Itoa(info.Minutes))
	}

	parts = append(parts, pad2(info.Secs))
	info.Formatted = strings.Join(parts, ":")

	return info
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}

	return strconv.Itoa(n)
}
