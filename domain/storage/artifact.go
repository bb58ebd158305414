package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArtifactExtension is the fixed extension for transcoded artifacts.
const ArtifactExtension = ".wav"

// ArtifactInfo describes a single artifact in the scratch directory.
type ArtifactInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ArtifactName generates a unique, non-guessable filename for a new
// extraction job: {videoID}_{uuid}.wav. Two jobs for the same video
// never share a name.
func ArtifactName(videoID string) string {
	return videoID + "_" + uuid.New().String() + ArtifactExtension
}

// SafeJoin joins the scratch directory and an artifact filename,
// rejecting names that could escape the directory. The filename is
// server-generated, but it travels through a URL path and is treated
// as attacker-influenced.
func SafeJoin(dir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: empty filename", ErrUnsafeFilename)
	}
	if strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFilename, filename)
	}
	if filename == "." || filename == ".." {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFilename, filename)
	}
	return filepath.Join(dir, filename), nil
}
