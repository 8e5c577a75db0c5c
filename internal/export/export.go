// Package export serializes a timeline into NLE interchange documents:
// a CMX3600-style EDL and an FCP7 XMEML project file. Exporters are pure
// over the timeline; their only side effect is the output document.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// NoClipsError is returned when the video track has no clip with a
// positive timeline duration. It is user-correctable and surfaced verbatim.
type NoClipsError struct {
	Format string
}

func (e *NoClipsError) Error() string {
	return fmt.Sprintf("%s export: video track has no clips with positive duration", e.Format)
}

// MissingAssetPolicy decides what happens when a clip's asset cannot be
// resolved to a file. Exporters skip or degrade; the render path fails.
type MissingAssetPolicy int

const (
	// SkipMissing keeps going without the unresolved clip's path.
	SkipMissing MissingAssetPolicy = iota
	// FailOnMissing aborts the whole operation.
	FailOnMissing
)

// ResolvedClip couples a timeline clip with its asset record and the
// located source file. Path is empty when the locator could not resolve
// the asset under SkipMissing.
type ResolvedClip struct {
	Clip  timeline.Clip
	Asset timeline.Asset
	Path  string
}

// Name returns the clip's display name, falling back to the asset name.
func (rc ResolvedClip) Name() string {
	if rc.Clip.Name != "" {
		return rc.Clip.Name
	}
	return rc.Asset.Name
}

// ResolveClips orders the video track's positive-duration clips, joins
// them with their assets and locates each source file. Under SkipMissing
// a clip whose asset record is absent is dropped and a clip whose file
// cannot be located keeps an empty Path; under FailOnMissing either case
// aborts. Returns NoClipsError when the track is empty.
func ResolveClips(tl timeline.Timeline, assets []timeline.Asset, locator media.Locator, policy MissingAssetPolicy, format string) ([]ResolvedClip, error) {
	clips := tl.SortedVideoClips()
	if len(clips) == 0 {
		return nil, &NoClipsError{Format: format}
	}

	idx := timeline.NewAssetIndex(assets)
	resolved := make([]ResolvedClip, 0, len(clips))
	for _, c := range clips {
		asset, ok := idx.Lookup(c.AssetID)
		if !ok {
			if policy == FailOnMissing {
				return nil, fmt.Errorf("clip %s: asset %s: %w", c.ID, c.AssetID, media.ErrNotFound)
			}
			continue
		}
		path, err := locator.Locate(asset.Src)
		if err != nil {
			if policy == FailOnMissing {
				return nil, fmt.Errorf("clip %s: asset %s (%s): %w", c.ID, asset.ID, asset.Src, err)
			}
			path = ""
		}
		resolved = append(resolved, ResolvedClip{Clip: c, Asset: asset, Path: path})
	}
	return resolved, nil
}

// writeAtomic writes data to path via a temp file in the same directory
// so concurrent readers never observe a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	// CreateTemp opens 0600; the document is meant to be picked up by
	// another application, often running as another user.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
