// Package errors defines error code constants for OpenPBRL.
// Each error code includes a unique identifier, HTTP status code,
// and message template for consistent error handling across the pipeline.
package errors

import "net/http"

// ErrorCode represents a structured error code definition
type ErrorCode struct {
	Code       string
	Type       ErrorType
	HTTPStatus int
	Message    string
}

// Standard error codes organized by category

// ============================================================================
// Preference Learning Errors (PBRL_xxx)
// ============================================================================

var (
	// ErrSamplingExhausted indicates the trajectory rejection sampler hit its
	// retry bound without finding a terminal-free window
	ErrSamplingExhausted = ErrorCode{
		Code:       "PBRL_001",
		Type:       ErrorTypeBusiness,
		HTTPStatus: http.StatusUnprocessableEntity,
		Message:    "Trajectory sampling exhausted retry limit",
	}

	// ErrDegenerateRewardRange indicates reward min-max normalization would
	// divide by zero because all rewards are equal
	ErrDegenerateRewardRange = ErrorCode{
		Code:       "PBRL_002",
		Type:       ErrorTypeBusiness,
		HTTPStatus: http.StatusUnprocessableEntity,
		Message:    "Reward range is degenerate (max equals min)",
	}

	// ErrDimensionMismatch indicates tensor or dataset field shapes do not align
	ErrDimensionMismatch = ErrorCode{
		Code:       "PBRL_003",
		Type:       ErrorTypeInternal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Dimension mismatch",
	}

	// ErrInvalidTrajectoryLength indicates the requested window length does not
	// fit the dataset
	ErrInvalidTrajectoryLength = ErrorCode{
		Code:       "PBRL_004",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Trajectory length must be positive and smaller than the dataset",
	}

	// ErrIndexOutOfRange indicates a trajectory or relabel index falls outside
	// the dataset bounds
	ErrIndexOutOfRange = ErrorCode{
		Code:       "PBRL_005",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Index out of dataset range",
	}

	// ErrEmptyCorpus indicates a preference corpus holds no pairs
	ErrEmptyCorpus = ErrorCode{
		Code:       "PBRL_006",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Preference corpus is empty",
	}
)

// ============================================================================
// Artifact Store Errors (STORE_xxx)
// ============================================================================

var (
	// ErrArtifactNotFound indicates the artifact does not exist at the given key
	ErrArtifactNotFound = ErrorCode{
		Code:       "STORE_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Artifact not found",
	}

	// ErrArtifactPutFailed indicates the artifact could not be persisted
	ErrArtifactPutFailed = ErrorCode{
		Code:       "STORE_002",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Failed to persist artifact",
	}

	// ErrArtifactGetFailed indicates the artifact could not be read
	ErrArtifactGetFailed = ErrorCode{
		Code:       "STORE_003",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Failed to read artifact",
	}

	// ErrArtifactDecodeFailed indicates the artifact payload could not be decoded
	ErrArtifactDecodeFailed = ErrorCode{
		Code:       "STORE_004",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Failed to decode artifact",
	}
)

// ============================================================================
// Relabeling Run Errors (RUN_xxx)
// ============================================================================

var (
	// ErrRunNotFound indicates the relabeling run does not exist
	ErrRunNotFound = ErrorCode{
		Code:       "RUN_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Relabeling run not found",
	}

	// ErrRunAlreadyRunning indicates a run with the same ID is in progress
	ErrRunAlreadyRunning = ErrorCode{
		Code:       "RUN_002",
		Type:       ErrorTypeConflict,
		HTTPStatus: http.StatusConflict,
		Message:    "Relabeling run is already in progress",
	}

	// ErrRunFailed indicates the run terminated with an error
	ErrRunFailed = ErrorCode{
		Code:       "RUN_003",
		Type:       ErrorTypeBusiness,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Relabeling run failed",
	}

	// ErrRunStoreUnavailable indicates the run store cannot be reached
	ErrRunStoreUnavailable = ErrorCode{
		Code:       "RUN_004",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusServiceUnavailable,
		Message:    "Run store unavailable",
	}

	// ErrRunPersistFailed indicates the run record could not be written or read
	ErrRunPersistFailed = ErrorCode{
		Code:       "RUN_005",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Failed to persist run record",
	}
)

// ============================================================================
// System Errors (SYS_xxx)
// ============================================================================

var (
	// ErrSysInternalError indicates unexpected internal error
	ErrSysInternalError = ErrorCode{
		Code:       "SYS_001",
		Type:       ErrorTypeInternal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Internal server error",
	}

	// ErrSysTimeout indicates operation timeout
	ErrSysTimeout = ErrorCode{
		Code:       "SYS_002",
		Type:       ErrorTypeTimeout,
		HTTPStatus: http.StatusGatewayTimeout,
		Message:    "Operation timed out",
	}

	// ErrSysConfigurationError indicates invalid configuration
	ErrSysConfigurationError = ErrorCode{
		Code:       "SYS_003",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Invalid configuration",
	}
)
