// Package config provides configuration management for the Cutroom Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Default values
	DefaultPort     = 8397
	DefaultLogLevel = "info"
	DefaultDataDir  = ".cutroom"
	DefaultFFmpeg   = "ffmpeg"
	DefaultFFprobe  = "ffprobe"
	DefaultVideoCRF = 18
	DefaultVideoPre = "veryfast"

	// Environment variable names
	EnvPort      = "CUTROOM_PORT"
	EnvLogLevel  = "CUTROOM_LOG_LEVEL"
	EnvDataDir   = "CUTROOM_DATA_DIR"
	EnvFFmpeg    = "CUTROOM_FFMPEG"
	EnvFFprobe   = "CUTROOM_FFPROBE"
	EnvMediaDirs = "CUTROOM_MEDIA_DIRS"
	EnvVideoCRF  = "CUTROOM_VIDEO_CRF"
	EnvVideoPre  = "CUTROOM_VIDEO_PRESET"

	// Database filename
	DBFilename = "cutroom.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ExportsDir() string
	ScratchDir() string
	FFmpegPath() string
	FFprobePath() string
	MediaDirs() []string
	VideoCRF() int
	VideoPreset() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port        int
	logLevel    string
	dataDir     string
	ffmpegPath  string
	ffprobePath string
	mediaDirs   []string
	videoCRF    int
	videoPreset string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:        DefaultPort,
		logLevel:    DefaultLogLevel,
		dataDir:     defaultDataDir(),
		ffmpegPath:  DefaultFFmpeg,
		ffprobePath: DefaultFFprobe,
		videoCRF:    DefaultVideoCRF,
		videoPreset: DefaultVideoPre,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if ff := os.Getenv(EnvFFmpeg); ff != "" {
		cfg.ffmpegPath = ff
	}
	if fp := os.Getenv(EnvFFprobe); fp != "" {
		cfg.ffprobePath = fp
	}

	// Media search directories: path-list separated, empty entries dropped
	if md := os.Getenv(EnvMediaDirs); md != "" {
		for _, dir := range strings.Split(md, string(os.PathListSeparator)) {
			dir = strings.TrimSpace(dir)
			if dir != "" {
				cfg.mediaDirs = append(cfg.mediaDirs, dir)
			}
		}
	}

	if crf := os.Getenv(EnvVideoCRF); crf != "" {
		v, err := strconv.Atoi(crf)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvVideoCRF, err)
		}
		if v < 0 || v > 51 {
			return nil, fmt.Errorf("invalid %s: CRF must be between 0 and 51", EnvVideoCRF)
		}
		cfg.videoCRF = v
	}

	if pre := os.Getenv(EnvVideoPre); pre != "" {
		cfg.videoPreset = pre
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ExportsDir returns the directory where EDL/XML exports and rendered
// files are written by default
func (c *EnvConfig) ExportsDir() string {
	return filepath.Join(c.dataDir, "exports")
}

// ScratchDir returns the directory for transient encoder inputs
func (c *EnvConfig) ScratchDir() string {
	return filepath.Join(c.dataDir, "scratch")
}

// FFmpegPath returns the encoder binary path or name
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// FFprobePath returns the probe binary path or name
func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

// MediaDirs returns the directories searched when resolving media
// references by file name
func (c *EnvConfig) MediaDirs() []string {
	return c.mediaDirs
}

// VideoCRF returns the encoder quality factor
func (c *EnvConfig) VideoCRF() int {
	return c.videoCRF
}

// VideoPreset returns the encoder speed preset
func (c *EnvConfig) VideoPreset() string {
	return c.videoPreset
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
