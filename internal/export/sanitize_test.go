package export

import (
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"plain", "My Rough Cut", 0, "My Rough Cut"},
		{"control chars", "bad\x00name\n", 0, "badname"},
		{"slashes replaced", "a/b\\c", 0, "a_b_c"},
		{"truncated", "abcdefghij", 4, "abcd"},
		{"trimmed", "  padded  ", 0, "padded"},
		{"allowed punctuation", "Take 2, (final).mp4", 0, "Take 2, (final).mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("SanitizeName(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()

	if err := ValidateOutputDir(dir); err != nil {
		t.Errorf("valid dir rejected: %v", err)
	}
	if err := ValidateOutputDir(""); err == nil {
		t.Error("empty dir accepted")
	}
	if err := ValidateOutputDir(filepath.Join(dir, "..", "elsewhere")); err == nil {
		t.Error("traversal accepted")
	}
	if err := ValidateOutputDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("nonexistent dir accepted")
	}

	file := filepath.Join(dir, "f.txt")
	if err := writeAtomic(file, []byte("x")); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := ValidateOutputDir(file); err == nil {
		t.Error("regular file accepted as dir")
	}
}
