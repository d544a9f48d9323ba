// Package archive stores run artifacts: report JSON, trade and equity CSVs
// and sweep result grids. Paths are slash-separated and relative to the
// backend root, e.g. "runs/<run-id>/report.json".
package archive

import "context"

// Storage is a flat key/value artifact store.
type Storage interface {
	// Write stores an artifact, creating any missing parents.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves an artifact.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns the artifact paths under the prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an artifact.
	Delete(ctx context.Context, path string) error

	// Exists reports whether an artifact is present.
	Exists(ctx context.Context, path string) (bool, error)
}
