// Package timeline holds the canonical in-memory representation of an
// editing project: tracks of clips referencing media assets. It is pure
// data; exporters and the render orchestrator read it and never mutate it.
package timeline

import "sort"

// Asset is a source media item. Immutable once created.
type Asset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Src      string  `json:"src"`
	Duration float64 `json:"duration"` // total source length, seconds
}

// Clip is a placed instance of an asset on a track. Start/End are
// timeline positions in seconds; TrimStart/TrimEnd are source offsets.
// End-Start is the clip's timeline duration and is authoritative
// everywhere: TrimEnd is carried for callers that set it but is never
// used to derive a length.
type Clip struct {
	ID        string   `json:"id"`
	AssetID   string   `json:"assetId"`
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	TrimStart float64  `json:"trimStart,omitempty"`
	TrimEnd   *float64 `json:"trimEnd,omitempty"`
	Name      string   `json:"name,omitempty"`
}

// Duration returns the clip's timeline duration in seconds.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// SourceIn returns the source in-point in seconds (TrimStart, default 0).
func (c Clip) SourceIn() float64 {
	return c.TrimStart
}

// SourceOut returns the source out-point: in-point plus timeline duration.
func (c Clip) SourceOut() float64 {
	return c.TrimStart + c.Duration()
}

// Track is a set of clips of a single type ("video" or "audio"; other
// types are ignored by this core).
type Track struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Clips []Clip `json:"clips"`
}

// Timeline is the editable project structure.
type Timeline struct {
	Tracks []Track `json:"tracks"`
}

// Word is a single word-level timestamp from speech recognition,
// the input shape of the auto-cut segmenter.
type Word struct {
	Word    string  `json:"word"`
	StartMs float64 `json:"start_ms"`
	EndMs   float64 `json:"end_ms"`
}

// VideoTrack returns the first track with type "video". Only this track
// participates in rendering and export; additional video tracks are a
// documented limitation, not silently merged.
func (t Timeline) VideoTrack() (Track, bool) {
	for _, tr := range t.Tracks {
		if tr.Type == "video" {
			return tr, true
		}
	}
	return Track{}, false
}

// SortedVideoClips returns the positive-duration clips of the video
// track ordered by Start. The input is not modified.
func (t Timeline) SortedVideoClips() []Clip {
	tr, ok := t.VideoTrack()
	if !ok {
		return nil
	}
	clips := make([]Clip, 0, len(tr.Clips))
	for _, c := range tr.Clips {
		if c.Duration() > 0 {
			clips = append(clips, c)
		}
	}
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].Start < clips[j].Start
	})
	return clips
}

// End returns the timeline position where the last video clip ends,
// or 0 for an empty video track.
func (t Timeline) End() float64 {
	var end float64
	tr, ok := t.VideoTrack()
	if !ok {
		return 0
	}
	for _, c := range tr.Clips {
		if c.End > end {
			end = c.End
		}
	}
	return end
}

// AssetIndex resolves AssetID references against the project's asset list.
type AssetIndex map[string]Asset

// NewAssetIndex builds an index keyed by asset id.
func NewAssetIndex(assets []Asset) AssetIndex {
	idx := make(AssetIndex, len(assets))
	for _, a := range assets {
		idx[a.ID] = a
	}
	return idx
}

// Lookup returns the asset for a clip's AssetID.
func (idx AssetIndex) Lookup(assetID string) (Asset, bool) {
	a, ok := idx[assetID]
	return a, ok
}
