package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/timecode"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// EDL events are always cut at a fixed 30 fps timebase regardless of the
// source media rate; the target applications this feeds assume it.
const edlFPS = 30

// GenerateEDL renders the timeline's video track as a CMX3600-style edit
// decision list. Clips whose asset cannot be located are silently
// skipped; the document still succeeds for the remaining clips. All
// frame math uses round-to-nearest on cumulative record positions so
// adjacent events stay contiguous.
func GenerateEDL(tl timeline.Timeline, assets []timeline.Asset, locator media.Locator, title string) (string, error) {
	resolved, err := ResolveClips(tl, assets, locator, SkipMissing, "EDL")
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("TITLE: %s", title),
		"FCM: NON-DROP FRAME",
		"",
	}

	event := 0
	var recordPos float64
	for _, rc := range resolved {
		if rc.Path == "" {
			continue
		}
		event++

		srcIn := timecode.RoundFrames(rc.Clip.SourceIn(), edlFPS)
		recIn := timecode.RoundFrames(recordPos, edlFPS)
		recordPos += rc.Clip.Duration()
		recOut := timecode.RoundFrames(recordPos, edlFPS)
		srcOut := srcIn + (recOut - recIn)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s",
				event, reelName(rc.Path), "V",
				timecode.Format(srcIn, edlFPS),
				timecode.Format(srcOut, edlFPS),
				timecode.Format(recIn, edlFPS),
				timecode.Format(recOut, edlFPS)),
			fmt.Sprintf("* FROM CLIP NAME: %s", rc.Name()),
			fmt.Sprintf("* SOURCE FILE: %s", rc.Path),
			"",
		)
	}

	return strings.Join(lines, "\n"), nil
}

// WriteEDL generates the EDL and writes it atomically to outPath.
func WriteEDL(tl timeline.Timeline, assets []timeline.Asset, locator media.Locator, title, outPath string) error {
	doc, err := GenerateEDL(tl, assets, locator, title)
	if err != nil {
		return err
	}
	return writeAtomic(outPath, []byte(doc))
}

// reelName derives an 8-character-max upper-cased reel from the resolved
// file's base name, stripping the extension and characters the format
// cannot carry.
func reelName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	reel := b.String()
	if reel == "" {
		reel = "AX"
	}
	if len(reel) > 8 {
		reel = reel[:8]
	}
	return reel
}
