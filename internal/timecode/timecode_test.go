package timecode

import (
	"math"
	"testing"
)

func TestRoundFrames(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    int
	}{
		{0, 30, 0},
		{1, 30, 30},
		{0.5, 30, 15},
		{1.0 / 60.0, 30, 1}, // half a frame rounds up
		{2.999, 30, 90},
		{10.4, 24, 250},
	}
	for _, tt := range tests {
		if got := RoundFrames(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("RoundFrames(%v, %d) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestFloorFrames(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    int
	}{
		{0, 30, 0},
		{2.999, 30, 89},
		{0.5, 24, 12},
		{1.999, 24, 47},
	}
	for _, tt := range tests {
		if got := FloorFrames(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("FloorFrames(%v, %d) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

// Quantizing cumulative positions with one policy must not drift: the
// difference of quantized in/out equals the quantized duration sum.
func TestRoundFrames_NoDriftOnCumulativePositions(t *testing.T) {
	durations := []float64{1.04, 0.77, 2.355, 0.019, 3.5}
	var cursor float64
	prevOut := 0
	for _, d := range durations {
		in := RoundFrames(cursor, 30)
		cursor += d
		out := RoundFrames(cursor, 30)
		if in != prevOut {
			t.Fatalf("gap between adjacent clips: in=%d, previous out=%d", in, prevOut)
		}
		prevOut = out
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		fps    int
		want   string
	}{
		{"zero", 0, 30, "00:00:00:00"},
		{"one second", 30, 30, "00:00:01:00"},
		{"frame wrap", 45, 30, "00:00:01:15"},
		{"one minute", 1800, 30, "00:01:00:00"},
		{"one hour", 108000, 30, "01:00:00:00"},
		{"24fps wrap", 25, 24, "00:00:01:01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.frames, tt.fps); got != tt.want {
				t.Errorf("Format(%d, %d) = %q, want %q", tt.frames, tt.fps, got, tt.want)
			}
		})
	}
}

func TestIsNTSC(t *testing.T) {
	tests := []struct {
		fps  float64
		want bool
	}{
		{29.97, true},
		{23.976, true},
		{59.94, true},
		{29.967, true}, // within tolerance
		{30, false},
		{24, false},
		{25, false},
	}
	for _, tt := range tests {
		if got := IsNTSC(tt.fps); got != tt.want {
			t.Errorf("IsNTSC(%v) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:05.23", 5.23, false},
		{"01:02:03.50", 3723.5, false},
		{"00:10:00.00", 600, false},
		{"00:00:07", 7, false},
		{"garbage", 0, true},
		{"00:xx:00.00", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
