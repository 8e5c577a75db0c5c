package render

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Options controls the encoder invocation.
type Options struct {
	VideoCodec string // default libx264
	Preset     string // filter-graph strategy only
	CRF        int    // filter-graph strategy only
}

func (o Options) withDefaults() Options {
	if o.VideoCodec == "" {
		o.VideoCodec = "libx264"
	}
	if o.Preset == "" {
		o.Preset = "veryfast"
	}
	if o.CRF == 0 {
		o.CRF = 18
	}
	return o
}

// sourceClip is one clip after asset resolution: a seekable file plus
// its source in/out points in seconds. The out point is in-point plus
// the clip's timeline duration.
type sourceClip struct {
	path     string
	inPoint  float64
	outPoint float64
}

// useFilterGraph reports whether every clip reads from one source file,
// in which case the single-input trim+concat filter graph applies. It
// trades generality for explicit quality controls.
func useFilterGraph(clips []sourceClip) bool {
	for _, c := range clips[1:] {
		if c.path != clips[0].path {
			return false
		}
	}
	return true
}

// concatList renders the demuxer directives for the concat strategy:
// one file/inpoint/outpoint stanza per clip.
func concatList(clips []sourceClip) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, c := range clips {
		// Single quotes inside the path must survive the directive quoting.
		safe := strings.ReplaceAll(filepath.ToSlash(c.path), "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", safe)
		fmt.Fprintf(&b, "inpoint %f\n", c.inPoint)
		fmt.Fprintf(&b, "outpoint %f\n", c.outPoint)
	}
	return b.String()
}

// concatArgs builds the encoder invocation for the concat strategy.
func concatArgs(listPath, outputPath string, opts Options) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", opts.VideoCodec,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		outputPath,
	}
}

// filterGraphArgs builds the single-input invocation: per-clip trim and
// atrim steps reset their timestamps and feed one concat filter.
func filterGraphArgs(clips []sourceClip, outputPath string, opts Options) []string {
	var graph strings.Builder
	for i, c := range clips {
		fmt.Fprintf(&graph, "[0:v]trim=start=%f:end=%f,setpts=PTS-STARTPTS[v%d];", c.inPoint, c.outPoint, i)
		fmt.Fprintf(&graph, "[0:a]atrim=start=%f:end=%f,asetpts=PTS-STARTPTS[a%d];", c.inPoint, c.outPoint, i)
	}
	for i := range clips {
		fmt.Fprintf(&graph, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=1[outv][outa]", len(clips))

	return []string{
		"-y",
		"-i", clips[0].path,
		"-filter_complex", graph.String(),
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-crf", fmt.Sprintf("%d", opts.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outputPath,
	}
}
