package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	for _, env := range []string{EnvPort, EnvLogLevel, EnvDataDir, EnvFFmpeg, EnvFFprobe, EnvMediaDirs, EnvVideoCRF, EnvVideoPre} {
		os.Unsetenv(env)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.FFmpegPath() != DefaultFFmpeg {
		t.Errorf("FFmpegPath = %q, want %q", cfg.FFmpegPath(), DefaultFFmpeg)
	}
	if cfg.FFprobePath() != DefaultFFprobe {
		t.Errorf("FFprobePath = %q, want %q", cfg.FFprobePath(), DefaultFFprobe)
	}
	if len(cfg.MediaDirs()) != 0 {
		t.Errorf("MediaDirs = %v, want empty", cfg.MediaDirs())
	}
	if cfg.VideoCRF() != DefaultVideoCRF {
		t.Errorf("VideoCRF = %d, want %d", cfg.VideoCRF(), DefaultVideoCRF)
	}
	if !strings.HasSuffix(cfg.DataDir(), DefaultDataDir) {
		t.Errorf("DataDir = %q, want a path ending in %q", cfg.DataDir(), DefaultDataDir)
	}
}

func TestNew_PortFromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9000")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	tests := []string{"abc", "0", "70000", "-1"}
	for _, val := range tests {
		os.Setenv(EnvPort, val)
		if _, err := New(); err == nil {
			t.Errorf("New() with %s=%q: expected error", EnvPort, val)
		}
	}
	os.Unsetenv(EnvPort)
}

func TestNew_InvalidCRF(t *testing.T) {
	tests := []string{"x", "-1", "52"}
	for _, val := range tests {
		os.Setenv(EnvVideoCRF, val)
		if _, err := New(); err == nil {
			t.Errorf("New() with %s=%q: expected error", EnvVideoCRF, val)
		}
	}
	os.Unsetenv(EnvVideoCRF)
}

func TestNew_MediaDirsSplitAndTrimmed(t *testing.T) {
	sep := string(os.PathListSeparator)
	os.Setenv(EnvMediaDirs, "/media/a"+sep+" /media/b "+sep+sep)
	defer os.Unsetenv(EnvMediaDirs)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dirs := cfg.MediaDirs()
	if len(dirs) != 2 || dirs[0] != "/media/a" || dirs[1] != "/media/b" {
		t.Errorf("MediaDirs = %v, want [/media/a /media/b]", dirs)
	}
}

func TestDerivedPaths(t *testing.T) {
	os.Setenv(EnvDataDir, "/var/lib/cutroom")
	defer os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.DBPath(); got != filepath.Join("/var/lib/cutroom", DBFilename) {
		t.Errorf("DBPath = %q", got)
	}
	if got := cfg.ExportsDir(); got != filepath.Join("/var/lib/cutroom", "exports") {
		t.Errorf("ExportsDir = %q", got)
	}
	if got := cfg.ScratchDir(); got != filepath.Join("/var/lib/cutroom", "scratch") {
		t.Errorf("ScratchDir = %q", got)
	}
}
