// Package autocut reduces word-level speech timestamps to keeper clips,
// dropping the silences between them.
package autocut

import (
	"fmt"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

const (
	// Words closer together than this belong to the same segment.
	mergeGapSeconds = 0.5
	// Padding applied to each closed segment so cuts don't clip speech.
	padSeconds = 0.05
)

// Segment is a merged run of words before it becomes a clip.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Cut merges the ordered word sequence into segments (splitting wherever
// the gap to the next word reaches 0.5s), pads each segment by 50ms
// clamped to the asset bounds, and places the resulting clips
// back-to-back on the output timeline. Empty input yields no clips;
// there is no failure mode.
func Cut(words []timeline.Word, asset timeline.Asset, trackID string) []timeline.Clip {
	segments := mergeWords(words)

	clips := make([]timeline.Clip, 0, len(segments))
	var cursor float64
	for i, seg := range segments {
		trimStart := seg.Start - padSeconds
		if trimStart < 0 {
			trimStart = 0
		}
		trimEnd := seg.End + padSeconds
		if trimEnd > asset.Duration {
			trimEnd = asset.Duration
		}

		dur := trimEnd - trimStart
		end := trimEnd
		clips = append(clips, timeline.Clip{
			ID:        fmt.Sprintf("%s-cut-%d", trackID, i+1),
			AssetID:   asset.ID,
			Start:     cursor,
			End:       cursor + dur,
			TrimStart: trimStart,
			TrimEnd:   &end,
			Name:      seg.Text,
		})
		cursor += dur
	}
	return clips
}

func mergeWords(words []timeline.Word) []Segment {
	var segments []Segment
	var current *Segment

	for _, w := range words {
		start := w.StartMs / 1000
		end := w.EndMs / 1000

		if current != nil && start-current.End < mergeGapSeconds {
			current.End = end
			current.Text += " " + w.Word
			continue
		}
		if current != nil {
			segments = append(segments, *current)
		}
		current = &Segment{Start: start, End: end, Text: w.Word}
	}
	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}
