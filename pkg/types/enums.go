// Package types provides shared type and enumeration definitions for OpenPBRL.
// All enums implement String(), Valid(), and FromString() methods
// for type-safe conversions and validation across the pipeline.
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// ============================================================================
// Run Status Enumerations
// ============================================================================

// RunStatus represents the lifecycle state of a relabeling run
type RunStatus string

const (
	// RunStatusPending indicates the run has been created but not started
	RunStatusPending RunStatus = "pending"

	// RunStatusRunning indicates the run is training or relabeling
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted indicates the run finished successfully
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed indicates the run terminated with an error
	RunStatusFailed RunStatus = "failed"
)

// String returns the string representation
func (rs RunStatus) String() string {
	return string(rs)
}

// Valid checks if the run status is valid
func (rs RunStatus) Valid() bool {
	switch rs {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is a final state
func (rs RunStatus) Terminal() bool {
	return rs == RunStatusCompleted || rs == RunStatusFailed
}

// FromStringRunStatus converts string to RunStatus
func FromStringRunStatus(s string) (RunStatus, error) {
	rs := RunStatus(strings.ToLower(s))
	if !rs.Valid() {
		return "", fmt.Errorf("invalid run status: %s", s)
	}
	return rs, nil
}

// Value implements driver.Valuer for database storage
func (rs RunStatus) Value() (driver.Value, error) {
	return string(rs), nil
}

// Scan implements sql.Scanner for database retrieval
func (rs *RunStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*rs = RunStatus(v)
	case []byte:
		*rs = RunStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into RunStatus", value)
	}
	return nil
}

// ============================================================================
// Artifact Kind Enumerations
// ============================================================================

// ArtifactKind represents the kind of persisted pipeline artifact
type ArtifactKind string

const (
	// ArtifactKindCorpus is a persisted trajectory-pair preference corpus
	ArtifactKindCorpus ArtifactKind = "corpus"

	// ArtifactKindCheckpoint is a latent reward model checkpoint
	ArtifactKindCheckpoint ArtifactKind = "checkpoint"

	// ArtifactKindDataset is a transition dataset
	ArtifactKindDataset ArtifactKind = "dataset"
)

// String returns the string representation
func (ak ArtifactKind) String() string {
	return string(ak)
}

// Valid checks if the artifact kind is valid
func (ak ArtifactKind) Valid() bool {
	switch ak {
	case ArtifactKindCorpus, ArtifactKindCheckpoint, ArtifactKindDataset:
		return true
	default:
		return false
	}
}

// FromStringArtifactKind converts string to ArtifactKind
func FromStringArtifactKind(s string) (ArtifactKind, error) {
	ak := ArtifactKind(strings.ToLower(s))
	if !ak.Valid() {
		return "", fmt.Errorf("invalid artifact kind: %s", s)
	}
	return ak, nil
}

// ============================================================================
// Store Backend Enumerations
// ============================================================================

// StoreBackend represents the artifact store implementation to use
type StoreBackend string

const (
	// StoreBackendFilesystem stores artifacts on the local filesystem
	StoreBackendFilesystem StoreBackend = "filesystem"

	// StoreBackendMinIO stores artifacts in a MinIO/S3 bucket
	StoreBackendMinIO StoreBackend = "minio"
)

// String returns the string representation
func (sb StoreBackend) String() string {
	return string(sb)
}

// Valid checks if the store backend is valid
func (sb StoreBackend) Valid() bool {
	switch sb {
	case StoreBackendFilesystem, StoreBackendMinIO:
		return true
	default:
		return false
	}
}

// FromStringStoreBackend converts string to StoreBackend
func FromStringStoreBackend(s string) (StoreBackend, error) {
	sb := StoreBackend(strings.ToLower(s))
	if !sb.Valid() {
		return "", fmt.Errorf("invalid store backend: %s", s)
	}
	return sb, nil
}
