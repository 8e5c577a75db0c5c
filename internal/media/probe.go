package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// VideoInfo is the subset of probed stream metadata the exporters need.
type VideoInfo struct {
	Width  int
	Height int
	FPS    float64
}

// DefaultVideoInfo is the fallback when probing fails.
var DefaultVideoInfo = VideoInfo{Width: 1920, Height: 1080, FPS: 30}

// Prober inspects a media file's first video stream.
type Prober interface {
	Probe(ctx context.Context, path string) (VideoInfo, error)
}

// FFprobe probes files by invoking the ffprobe binary.
type FFprobe struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewFFprobe builds a prober around the given ffprobe binary path
// ("ffprobe" resolves via PATH).
func NewFFprobe(binary string, logger *slog.Logger) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary, timeout: 15 * time.Second, logger: logger}
}

func (p *FFprobe) Probe(ctx context.Context, path string) (VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		p.logger.Warn("ffprobe failed", "path", path, "error", err)
		return VideoInfo{}, ErrNotFound
	}

	info, err := parseProbeOutput(out)
	if err != nil {
		p.logger.Warn("ffprobe output unparseable", "path", path, "error", err)
		return VideoInfo{}, ErrNotFound
	}
	return info, nil
}

type probeDocument struct {
	Streams []struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		FrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseProbeOutput(data []byte) (VideoInfo, error) {
	var doc probeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return VideoInfo{}, fmt.Errorf("parse probe JSON: %w", err)
	}
	if len(doc.Streams) == 0 {
		return VideoInfo{}, fmt.Errorf("no video stream in probe output")
	}

	s := doc.Streams[0]
	fps, err := parseFrameRate(s.FrameRate)
	if err != nil {
		return VideoInfo{}, err
	}
	if s.Width <= 0 || s.Height <= 0 {
		return VideoInfo{}, fmt.Errorf("probe reported %dx%d", s.Width, s.Height)
	}
	return VideoInfo{Width: s.Width, Height: s.Height, FPS: fps}, nil
}

// parseFrameRate parses ffprobe's rational r_frame_rate ("30000/1001").
func parseFrameRate(ratio string) (float64, error) {
	num, den, found := strings.Cut(ratio, "/")
	if !found {
		f, err := strconv.ParseFloat(ratio, 64)
		if err != nil || f <= 0 {
			return 0, fmt.Errorf("malformed frame rate %q", ratio)
		}
		return f, nil
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed frame rate %q", ratio)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("malformed frame rate %q", ratio)
	}
	f := n / d
	if f <= 0 {
		return 0, fmt.Errorf("malformed frame rate %q", ratio)
	}
	return f, nil
}

// ProbeOrDefault probes a path and falls back to DefaultVideoInfo on any
// failure, including an unresolvable path.
func ProbeOrDefault(ctx context.Context, p Prober, path string) VideoInfo {
	if p == nil || path == "" {
		return DefaultVideoInfo
	}
	info, err := p.Probe(ctx, path)
	if err != nil {
		return DefaultVideoInfo
	}
	return info
}
