// Package format renders timing and weather values as display strings.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Placeholder is shown in place of any value that is missing or invalid.
const Placeholder = "--"

// maxSeconds keeps the millisecond conversion inside int64.
const maxSeconds = float64(math.MaxInt64 / 1000)

// LapTime formats a duration in seconds as M:SS.mmm. The value is rounded to
// whole milliseconds before it is split, so the seconds field never reads 60.
func LapTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds >= maxSeconds {
		return Placeholder
	}
	ms := int64(math.Round(seconds * 1000))
	minutes := ms / 60000
	rem := ms % 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, rem/1000, rem%1000)
}

// ParseLapTime parses "M:SS.mmm" or "SS.mmm" into seconds.
func ParseLapTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Placeholder {
		return 0, eris.New("format: empty lap time")
	}

	minutes := 0
	secPart := s
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		m, err := strconv.Atoi(s[:i])
		if err != nil || m < 0 {
			return 0, eris.Errorf("format: invalid minutes in %q", s)
		}
		minutes = m
		secPart = s[i+1:]
	}

	sec, err := strconv.ParseFloat(secPart, 64)
	if err != nil || sec < 0 || sec >= 60 || math.IsNaN(sec) {
		return 0, eris.Errorf("format: invalid seconds in %q", s)
	}
	return float64(minutes)*60 + sec, nil
}

// Temperature formats degrees Celsius with one decimal.
func Temperature(celsius float64) string {
	if math.IsNaN(celsius) || math.IsInf(celsius, 0) {
		return Placeholder
	}
	return fmt.Sprintf("%.1f°C", celsius)
}

// Percent formats a percentage with one decimal.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Placeholder
	}
	return fmt.Sprintf("%.1f%%", v)
}

// Laps formats a lap count; zero means the count is unknown.
func Laps(n int) string {
	if n <= 0 {
		return Placeholder
	}
	return fmt.Sprintf("%d Laps", n)
}
