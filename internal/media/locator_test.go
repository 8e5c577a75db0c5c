package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLocate_AbsolutePathReturnedAsIs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "intro.mp4")

	l := NewFileLocator(nil)
	got, err := l.Locate(path)
	if err != nil {
		t.Fatalf("Locate(%q) error = %v", path, err)
	}
	if got != path {
		t.Errorf("Locate = %q, want %q", got, path)
	}
}

func TestLocate_BareFilenameSearchesDirs(t *testing.T) {
	empty := t.TempDir()
	mediaDir := t.TempDir()
	want := writeFile(t, mediaDir, "broll.mov")

	l := NewFileLocator([]string{empty, mediaDir})
	got, err := l.Locate("broll.mov")
	if err != nil {
		t.Fatalf("Locate error = %v", err)
	}
	if got != want {
		t.Errorf("Locate = %q, want %q", got, want)
	}
}

func TestLocate_StaleAbsolutePathFallsBackToBasename(t *testing.T) {
	mediaDir := t.TempDir()
	want := writeFile(t, mediaDir, "moved.mp4")

	l := NewFileLocator([]string{mediaDir})
	got, err := l.Locate("/gone/away/moved.mp4")
	if err != nil {
		t.Fatalf("Locate error = %v", err)
	}
	if got != want {
		t.Errorf("Locate = %q, want %q", got, want)
	}
}

func TestLocate_SchemeReferencesAreNotFound(t *testing.T) {
	mediaDir := t.TempDir()
	writeFile(t, mediaDir, "x.mp4")
	l := NewFileLocator([]string{mediaDir})

	for _, ref := range []string{
		"blob:http://localhost:5173/550e8400-e29b",
		"mem:abc123",
		"https://example.com/x.mp4",
	} {
		if _, err := l.Locate(ref); !errors.Is(err, ErrNotFound) {
			t.Errorf("Locate(%q) error = %v, want ErrNotFound", ref, err)
		}
	}
}

func TestLocate_MissingAndEmpty(t *testing.T) {
	l := NewFileLocator([]string{t.TempDir()})
	if _, err := l.Locate("nothere.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
	if _, err := l.Locate(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty ref error = %v, want ErrNotFound", err)
	}
}

func TestHasScheme(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"blob:abc", true},
		{"http://x", true},
		{`C:\media\clip.mp4`, false},
		{"/abs/path.mp4", false},
		{"plain.mp4", false},
		{"weird name:with colon.mp4", false},
	}
	for _, tt := range tests {
		if got := hasScheme(tt.ref); got != tt.want {
			t.Errorf("hasScheme(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
