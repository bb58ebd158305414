package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestArtifactName(t *testing.T) {
	name := ArtifactName("abc12345678")

	if !strings.HasPrefix(name, "abc12345678_") {
		t.Errorf("ArtifactName() = %q, want video ID prefix", name)
	}
	if !strings.HasSuffix(name, ArtifactExtension) {
		t.Errorf("ArtifactName() = %q, want %s extension", name, ArtifactExtension)
	}
}

func TestArtifactNameUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := ArtifactName("abc12345678")
		if seen[name] {
			t.Fatalf("ArtifactName() produced duplicate %q", name)
		}
		seen[name] = true
	}
}

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{
			name:     "plain filename",
			filename: "abc12345678_f47ac10b-58cc-4372-a567-0e02b2c3d479.wav",
			want:     filepath.Join("/tmp/scratch", "abc12345678_f47ac10b-58cc-4372-a567-0e02b2c3d479.wav"),
		},
		{
			name:     "parent traversal",
			filename: "../etc/passwd",
			wantErr:  true,
		},
		{
			name:     "nested path",
			filename: "sub/file.wav",
			wantErr:  true,
		},
		{
			name:     "backslash path",
			filename: `sub\file.wav`,
			wantErr:  true,
		},
		{
			name:     "dot dot alone",
			filename: "..",
			wantErr:  true,
		},
		{
			name:     "empty filename",
			filename: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoin("/tmp/scratch", tt.filename)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("SafeJoin(%q) expected error, got %q", tt.filename, got)
				}
				if !errors.Is(err, ErrUnsafeFilename) {
					t.Errorf("SafeJoin(%q) error = %v, want ErrUnsafeFilename", tt.filename, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("SafeJoin(%q) unexpected error: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("SafeJoin(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
