package storage

import "io"

// ArtifactStore is the port for the scratch directory holding
// transcoded artifacts. All operations address artifacts by bare
// filename; deletion is idempotent so the delivery endpoint and the
// retention sweeper can race safely.
type ArtifactStore interface {
	// Path resolves a filename inside the scratch directory.
	// Returns ErrUnsafeFilename for traversal attempts.
	Path(filename string) (string, error)

	// Exists reports whether the artifact is present.
	Exists(filename string) bool

	// Size returns the artifact's byte size, or ErrNotFound.
	Size(filename string) (int64, error)

	// OpenRead opens the artifact for streaming, or ErrNotFound.
	OpenRead(filename string) (io.ReadCloser, error)

	// Delete removes the artifact. Absence is success, not error.
	Delete(filename string) error

	// List enumerates all artifacts currently in the store.
	List() ([]ArtifactInfo, error)
}
