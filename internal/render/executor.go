// Package render compiles a timeline into an encoder invocation, runs
// the encoder as a supervised background job and exposes per-job
// progress to concurrent callers.
package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Last 8 KB of encoder stderr kept for diagnostics.
const maxStderrBytes = 8 * 1024

// RunResult is the structured outcome of a finished subprocess.
type RunResult struct {
	ExitCode   int
	StderrTail string
	Duration   time.Duration
}

// IsSuccess reports a clean exit.
func (r RunResult) IsSuccess() bool { return r.ExitCode == 0 }

// Executor runs an external encoder process, feeding each stderr line to
// onLine as it arrives. It is the single seam between the orchestrator
// and real binaries, so rendering stays testable without ffmpeg.
type Executor interface {
	Run(ctx context.Context, name string, args []string, onLine func(string)) RunResult
}

// OSExecutor runs real OS subprocesses.
type OSExecutor struct {
	logger *slog.Logger
}

func NewOSExecutor(logger *slog.Logger) *OSExecutor {
	return &OSExecutor{logger: logger}
}

func (e *OSExecutor) Run(ctx context.Context, name string, args []string, onLine func(string)) RunResult {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var tail tailBuffer
	tail.limit = maxStderrBytes

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return RunResult{ExitCode: -1, StderrTail: err.Error(), Duration: time.Since(start)}
	}

	e.logger.Info("starting encoder process", "binary", name, "args", args)
	if err := cmd.Start(); err != nil {
		return RunResult{ExitCode: -1, StderrTail: err.Error(), Duration: time.Since(start)}
	}

	// The encoder's continuous status stream uses carriage returns
	// without newlines, so a plain line scan would block until exit.
	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanStatusLines)
	for scanner.Scan() {
		line := scanner.Text()
		tail.Write([]byte(line + "\n"))
		if onLine != nil {
			onLine(line)
		}
	}

	err = cmd.Wait()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			tail.Write([]byte(err.Error()))
		}
	}

	if exitCode != 0 {
		e.logger.Warn("encoder process failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
		)
	} else {
		e.logger.Info("encoder process finished",
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	return RunResult{ExitCode: exitCode, StderrTail: tail.String(), Duration: elapsed}
}

// scanStatusLines splits on \n or \r so the status stream the encoder
// rewrites in place still arrives line by line.
func scanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// tailBuffer keeps only the last limit bytes written to it.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if t.buf.Len() > t.limit {
		b := t.buf.Bytes()
		trimmed := make([]byte, t.limit)
		copy(trimmed, b[len(b)-t.limit:])
		t.buf.Reset()
		t.buf.Write(trimmed)
	}
	return n, nil
}

func (t *tailBuffer) String() string { return t.buf.String() }

// SubprocessError reports a nonzero encoder exit, carrying the captured
// stderr tail for diagnostics.
type SubprocessError struct {
	ExitCode int
	Stderr   string
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("encoder exited %d: %s", e.ExitCode, e.Stderr)
}
