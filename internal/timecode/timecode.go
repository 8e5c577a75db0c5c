// Package timecode converts between continuous time in seconds and
// discrete frame counts. Two quantization policies exist and are not
// interchangeable: an exporter must pick one and apply it to every frame
// computation in a document, otherwise adjacent clips drift off by one.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultFPS is used when a frame rate cannot be determined from probed
// media metadata.
const DefaultFPS = 30

// RoundFrames quantizes seconds to the nearest frame at fps.
func RoundFrames(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}

// FloorFrames quantizes seconds by truncation at fps.
func FloorFrames(seconds float64, fps int) int {
	return int(math.Floor(seconds * float64(fps)))
}

// Format renders a frame count as a non-drop-frame HH:MM:SS:FF timecode,
// with FF wrapping at the frame rate.
func Format(frames, fps int) string {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ff := frames % fps
	totalSeconds := frames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, ff)
}

// IsNTSC reports whether fps is one of the drop-frame-adjacent rates
// (23.976, 29.97, 59.94), within a 0.01 tolerance.
func IsNTSC(fps float64) bool {
	for _, r := range []float64{23.976, 29.97, 59.94} {
		if math.Abs(fps-r) < 0.01 {
			return true
		}
	}
	return false
}

// ParseClock parses an ffmpeg status clock of the form HH:MM:SS.ff into
// seconds. The fractional part is optional.
func ParseClock(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed clock %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed clock %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed clock %q: %w", s, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed clock %q: %w", s, err)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}
