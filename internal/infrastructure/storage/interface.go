// Package storage defines the artifact store abstraction.
// Corpora, model checkpoints, and datasets are opaque payloads addressed by
// string keys; the load-if-exists-else-compute caching used by the pipeline
// is expressed through Get/Exists rather than ad hoc path checks.
package storage

import "context"

// ArtifactStore abstracts persistence of pipeline artifacts
type ArtifactStore interface {
	// Get returns the payload stored at key; ErrArtifactNotFound when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the payload at key, replacing any previous value.
	// A successful Put leaves the artifact fully present; partial writes
	// are never observable through Get.
	Put(ctx context.Context, key string, data []byte) error

	// Exists reports whether an artifact is stored at key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the artifact at key; removing a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Ping checks backend health
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
