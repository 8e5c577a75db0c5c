package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/timecode"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// ErrNoClips is returned when the timeline's video track has nothing to
// render.
var ErrNoClips = errors.New("render: video track has no clips with positive duration")

// State is a render job's lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// JobStatus is a point-in-time snapshot of one render job. Progress is
// 0-100; it reaches exactly 100 only on a clean encoder exit.
type JobStatus struct {
	ID         string
	State      State
	Progress   int
	OutputPath string
	Err        string
}

// IsRendering reports whether the job is still in flight.
func (s JobStatus) IsRendering() bool { return s.State == StateRunning }

type job struct {
	mu     sync.Mutex
	status JobStatus
}

func (j *job) snapshot() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// setProgress advances progress monotonically while running.
func (j *job) setProgress(pct int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.State == StateRunning && pct > j.status.Progress {
		j.status.Progress = pct
	}
}

func (j *job) finish(result RunResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if result.IsSuccess() {
		j.status.State = StateSucceeded
		j.status.Progress = 100
		return
	}
	j.status.State = StateFailed
	err := &SubprocessError{ExitCode: result.ExitCode, Stderr: result.StderrTail}
	j.status.Err = err.Error()
}

// Orchestrator turns timelines into encoder invocations and supervises
// them. Jobs live in an arena keyed by an opaque id handed back at
// launch, so concurrent renders never interfere with each other's
// progress.
type Orchestrator struct {
	executor   Executor
	locator    media.Locator
	logger     *slog.Logger
	binary     string
	scratchDir string
	opts       Options

	mu     sync.RWMutex
	jobs   map[string]*job
	latest string
}

// Config holds the orchestrator's dependencies and encoder settings.
type Config struct {
	Executor   Executor
	Locator    media.Locator
	Logger     *slog.Logger
	Binary     string // encoder binary, default "ffmpeg"
	ScratchDir string // concat list files live here
	Options    Options
}

func NewOrchestrator(cfg Config) *Orchestrator {
	binary := cfg.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Orchestrator{
		executor:   cfg.Executor,
		locator:    cfg.Locator,
		logger:     cfg.Logger,
		binary:     binary,
		scratchDir: cfg.ScratchDir,
		opts:       cfg.Options.withDefaults(),
		jobs:       make(map[string]*job),
	}
}

// Matches the elapsed-time field of the encoder's status stream.
var progressClock = regexp.MustCompile(`time=(\d+:\d{2}:\d{2}\.?\d*)`)

// StartRender compiles the timeline and launches the encoder in the
// background, returning the new job's id immediately. Structural
// problems (no clips, unresolvable sources) fail synchronously before
// any job exists; after launch the job runs to completion or failure
// and is observed via Job.
func (o *Orchestrator) StartRender(ctx context.Context, tl timeline.Timeline, assets []timeline.Asset, outputPath string) (string, error) {
	clips, err := o.resolve(tl, assets)
	if err != nil {
		return "", err
	}

	args, cleanup, err := o.buildArgs(clips, outputPath)
	if err != nil {
		return "", err
	}

	total := tl.End()
	id := uuid.NewString()
	j := &job{status: JobStatus{ID: id, State: StateRunning, OutputPath: outputPath}}

	o.mu.Lock()
	o.jobs[id] = j
	o.latest = id
	o.mu.Unlock()

	logger := o.logger.With("job_id", id)
	logger.Info("render started", "clips", len(clips), "output", outputPath)

	// The job outlives the caller. An HTTP handler's context is canceled
	// as soon as the 202 goes out, which would kill the encoder mid-run.
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer cleanup()
		result := o.executor.Run(ctx, o.binary, args, func(line string) {
			if pct, ok := parseProgress(line, total); ok {
				j.setProgress(pct)
			}
		})
		j.finish(result)

		status := j.snapshot()
		if status.State == StateFailed {
			logger.Warn("render failed", "error", status.Err)
		} else {
			logger.Info("render succeeded", "duration_ms", result.Duration.Milliseconds())
		}
	}()

	return id, nil
}

// Job returns a snapshot of the job with the given id.
func (o *Orchestrator) Job(id string) (JobStatus, bool) {
	o.mu.RLock()
	j, ok := o.jobs[id]
	o.mu.RUnlock()
	if !ok {
		return JobStatus{}, false
	}
	return j.snapshot(), true
}

// Latest returns the most recently launched job, or an Idle status when
// nothing has been rendered yet.
func (o *Orchestrator) Latest() JobStatus {
	o.mu.RLock()
	j, ok := o.jobs[o.latest]
	o.mu.RUnlock()
	if !ok {
		return JobStatus{State: StateIdle}
	}
	return j.snapshot()
}

// resolve orders the video clips and locates every source file. The
// render path has no degraded mode: a missing source fails the request.
func (o *Orchestrator) resolve(tl timeline.Timeline, assets []timeline.Asset) ([]sourceClip, error) {
	ordered := tl.SortedVideoClips()
	if len(ordered) == 0 {
		return nil, ErrNoClips
	}

	idx := timeline.NewAssetIndex(assets)
	clips := make([]sourceClip, 0, len(ordered))
	for _, c := range ordered {
		asset, ok := idx.Lookup(c.AssetID)
		if !ok {
			return nil, fmt.Errorf("clip %s: asset %s: %w", c.ID, c.AssetID, media.ErrNotFound)
		}
		path, err := o.locator.Locate(asset.Src)
		if err != nil {
			return nil, fmt.Errorf("clip %s: asset %s (%s): %w", c.ID, asset.ID, asset.Src, err)
		}
		clips = append(clips, sourceClip{
			path:     path,
			inPoint:  c.SourceIn(),
			outPoint: c.SourceOut(),
		})
	}
	return clips, nil
}

// buildArgs picks the encoder strategy and materializes any scratch
// files it needs. cleanup removes them once the job is done.
func (o *Orchestrator) buildArgs(clips []sourceClip, outputPath string) (args []string, cleanup func(), err error) {
	if useFilterGraph(clips) {
		return filterGraphArgs(clips, outputPath, o.opts), func() {}, nil
	}

	list, err := os.CreateTemp(o.scratchDir, "concat-*.txt")
	if err != nil {
		return nil, nil, fmt.Errorf("create concat list: %w", err)
	}
	listPath := list.Name()
	if _, err := list.WriteString(concatList(clips)); err != nil {
		list.Close()
		os.Remove(listPath)
		return nil, nil, fmt.Errorf("write concat list: %w", err)
	}
	if err := list.Close(); err != nil {
		os.Remove(listPath)
		return nil, nil, fmt.Errorf("close concat list: %w", err)
	}

	return concatArgs(listPath, outputPath, o.opts), func() { os.Remove(listPath) }, nil
}

// parseProgress extracts the elapsed clock from one encoder status line
// and converts it to a percentage of the timeline's total duration,
// clamped to [0,99] while running.
func parseProgress(line string, totalSeconds float64) (int, bool) {
	if totalSeconds <= 0 {
		return 0, false
	}
	m := progressClock.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	elapsed, err := timecode.ParseClock(m[1])
	if err != nil {
		return 0, false
	}
	pct := int(elapsed / totalSeconds * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 99 {
		pct = 99
	}
	return pct, true
}

// OutputFile returns the finished artifact's path for a succeeded job.
func (o *Orchestrator) OutputFile(id string) (string, error) {
	status, ok := o.Job(id)
	if !ok {
		return "", fmt.Errorf("render job %s: %w", id, os.ErrNotExist)
	}
	if status.State != StateSucceeded {
		return "", fmt.Errorf("render job %s is %s, no artifact available", id, status.State)
	}
	return filepath.Clean(status.OutputPath), nil
}
