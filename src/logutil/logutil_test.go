package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRedactKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "********"},
		{"short", "********"},
		{"sk-or-1234567890abcd", "sk-o...abcd"},
	}
	for _, tt := range tests {
		if got := RedactKey(tt.in); got != tt.want {
			t.Errorf("RedactKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello wrold", 50, "hello wrold"},
		{"line one\n\tline two", 50, "line one line two"},
		{"ümlauts everywhere", 7, "ümlauts..."},
	}
	for _, tt := range tests {
		if got := Preview(tt.in, tt.max); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", maxSizeBytes+1)), 0o600); err != nil {
		t.Fatal(err)
	}
	rotateIfNeeded(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("base log should have been rotated away, stat err = %v", err)
	}
	if _, err := os.Stat(archiveName(path, 1)); err != nil {
		t.Errorf("archive .1 missing: %v", err)
	}
}
