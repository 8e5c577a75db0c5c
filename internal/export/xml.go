package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/timecode"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// The sequence is always declared 1920x1080 regardless of the probed
// resolution; several import targets reject odd sequence sizes. Asset
// samplecharacteristics still carry the true probed values.
const (
	sequenceWidth  = 1920
	sequenceHeight = 1080
)

type xmeml struct {
	XMLName xml.Name   `xml:"xmeml"`
	Version string     `xml:"version,attr"`
	Project xmlProject `xml:"project"`
}

type xmlProject struct {
	Name     string      `xml:"name"`
	Children xmlChildren `xml:"children"`
}

// Field order matters: the deduplicated file bin precedes the sequence.
type xmlChildren struct {
	Files    []xmlFile   `xml:"file"`
	Sequence xmlSequence `xml:"sequence"`
}

type xmlRate struct {
	Timebase int    `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type xmlFile struct {
	ID       string       `xml:"id,attr"`
	Name     string       `xml:"name"`
	PathURL  string       `xml:"pathurl"`
	Rate     xmlRate      `xml:"rate"`
	Duration int          `xml:"duration"`
	Media    xmlFileMedia `xml:"media"`
}

type xmlFileMedia struct {
	Video xmlFileVideo `xml:"video"`
	Audio xmlFileAudio `xml:"audio"`
}

type xmlFileVideo struct {
	SampleCharacteristics xmlSampleCharacteristics `xml:"samplecharacteristics"`
}

type xmlSampleCharacteristics struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
}

type xmlFileAudio struct {
	ChannelCount int `xml:"channelcount"`
}

type xmlSequence struct {
	ID       string           `xml:"id,attr"`
	Name     string           `xml:"name"`
	Duration int              `xml:"duration"`
	Rate     xmlRate          `xml:"rate"`
	Media    xmlSequenceMedia `xml:"media"`
}

type xmlSequenceMedia struct {
	Video xmlSequenceVideo `xml:"video"`
	Audio xmlSequenceAudio `xml:"audio"`
}

type xmlSequenceVideo struct {
	Format xmlVideoFormat `xml:"format"`
	Track  xmlTrack       `xml:"track"`
}

type xmlVideoFormat struct {
	SampleCharacteristics xmlSampleCharacteristics `xml:"samplecharacteristics"`
}

type xmlSequenceAudio struct {
	Track xmlTrack `xml:"track"`
}

type xmlTrack struct {
	ClipItems []xmlClipItem `xml:"clipitem"`
}

type xmlClipItem struct {
	ID          string          `xml:"id,attr"`
	Name        string          `xml:"name"`
	Enabled     string          `xml:"enabled"`
	Duration    int             `xml:"duration"`
	Rate        xmlRate         `xml:"rate"`
	Start       int             `xml:"start"`
	End         int             `xml:"end"`
	In          int             `xml:"in"`
	Out         int             `xml:"out"`
	File        *xmlFileRef     `xml:"file,omitempty"`
	SourceTrack *xmlSourceTrack `xml:"sourcetrack,omitempty"`
	Links       []xmlLink       `xml:"link"`
}

type xmlFileRef struct {
	ID string `xml:"id,attr"`
}

type xmlSourceTrack struct {
	MediaType  string `xml:"mediatype"`
	TrackIndex int    `xml:"trackindex"`
}

type xmlLink struct {
	LinkClipRef string `xml:"linkclipref"`
	MediaType   string `xml:"mediatype"`
	TrackIndex  int    `xml:"trackindex"`
	ClipIndex   int    `xml:"clipindex"`
}

// GenerateXML renders the timeline's video track as an FCP7 XMEML v4
// project document. The sequence frame rate comes from probing the first
// clip's asset, falling back to 1920x1080@30; each asset keeps its own
// probed rate independently. Every frame number in the document is
// quantized by truncation, matching the floor policy end to end.
func GenerateXML(ctx context.Context, tl timeline.Timeline, assets []timeline.Asset, locator media.Locator, prober media.Prober, title string) ([]byte, error) {
	resolved, err := ResolveClips(tl, assets, locator, SkipMissing, "XML")
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, &NoClipsError{Format: "XML"}
	}

	seqInfo := media.ProbeOrDefault(ctx, prober, resolved[0].Path)
	seqRate := rateOf(seqInfo.FPS)
	timebase := seqRate.Timebase

	// Deduplicated file bin in first-use order, one entry per asset id.
	fileIDs := make(map[string]string)
	var files []xmlFile
	for _, rc := range resolved {
		if _, ok := fileIDs[rc.Asset.ID]; ok {
			continue
		}
		id := fmt.Sprintf("file-%d", len(files)+1)
		fileIDs[rc.Asset.ID] = id

		info := media.ProbeOrDefault(ctx, prober, rc.Path)
		assetRate := rateOf(info.FPS)
		files = append(files, xmlFile{
			ID:       id,
			Name:     rc.Asset.Name,
			PathURL:  pathURL(rc.Path),
			Rate:     assetRate,
			Duration: timecode.FloorFrames(rc.Asset.Duration, assetRate.Timebase),
			Media: xmlFileMedia{
				Video: xmlFileVideo{SampleCharacteristics: xmlSampleCharacteristics{
					Width:  info.Width,
					Height: info.Height,
				}},
				Audio: xmlFileAudio{ChannelCount: 2},
			},
		})
	}

	// Clips are concatenated in Start order: track placement accumulates
	// frame-quantized durations, so the original Start gaps do not leak
	// into the document.
	var videoItems, audioItems []xmlClipItem
	cursor := 0
	for i, rc := range resolved {
		n := i + 1
		dur := timecode.FloorFrames(rc.Clip.Duration(), timebase)
		in := timecode.FloorFrames(rc.Clip.SourceIn(), timebase)
		links := []xmlLink{
			{LinkClipRef: fmt.Sprintf("clipitem-v-%d", n), MediaType: "video", TrackIndex: 1, ClipIndex: n},
			{LinkClipRef: fmt.Sprintf("clipitem-a-%d", n), MediaType: "audio", TrackIndex: 1, ClipIndex: n},
		}

		item := xmlClipItem{
			Name:     rc.Name(),
			Enabled:  "TRUE",
			Duration: dur,
			Rate:     seqRate,
			Start:    cursor,
			End:      cursor + dur,
			In:       in,
			Out:      in + dur,
			File:     &xmlFileRef{ID: fileIDs[rc.Asset.ID]},
			Links:    links,
		}

		video := item
		video.ID = fmt.Sprintf("clipitem-v-%d", n)
		videoItems = append(videoItems, video)

		// The source format carries no separate audio element; a parallel
		// audio item models one synchronized audio+video source per clip.
		audio := item
		audio.ID = fmt.Sprintf("clipitem-a-%d", n)
		audio.SourceTrack = &xmlSourceTrack{MediaType: "audio", TrackIndex: 1}
		audioItems = append(audioItems, audio)

		cursor += dur
	}

	doc := xmeml{
		Version: "4",
		Project: xmlProject{
			Name: title,
			Children: xmlChildren{
				Files: files,
				Sequence: xmlSequence{
					ID:       "sequence-1",
					Name:     title,
					Duration: cursor,
					Rate:     seqRate,
					Media: xmlSequenceMedia{
						Video: xmlSequenceVideo{
							Format: xmlVideoFormat{SampleCharacteristics: xmlSampleCharacteristics{
								Width:  sequenceWidth,
								Height: sequenceHeight,
							}},
							Track: xmlTrack{ClipItems: videoItems},
						},
						Audio: xmlSequenceAudio{Track: xmlTrack{ClipItems: audioItems}},
					},
				},
			},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal xmeml: %w", err)
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<!DOCTYPE xmeml>\n")
	b.Write(body)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// WriteXML generates the XMEML document and writes it atomically to outPath.
func WriteXML(ctx context.Context, tl timeline.Timeline, assets []timeline.Asset, locator media.Locator, prober media.Prober, title, outPath string) error {
	doc, err := GenerateXML(ctx, tl, assets, locator, prober, title)
	if err != nil {
		return err
	}
	return writeAtomic(outPath, doc)
}

// rateOf maps a probed frame rate to its integer timebase and NTSC flag.
func rateOf(fps float64) xmlRate {
	ntsc := "FALSE"
	if timecode.IsNTSC(fps) {
		ntsc = "TRUE"
	}
	return xmlRate{Timebase: int(math.Round(fps)), NTSC: ntsc}
}

// pathURL renders a resolved path as a file:/// URL with forward slashes.
// An unresolved path degrades to an empty field rather than failing the
// document.
func pathURL(path string) string {
	if path == "" {
		return ""
	}
	p := strings.ReplaceAll(path, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
