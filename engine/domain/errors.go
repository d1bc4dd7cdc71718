package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline error taxonomy. All are surfaced to the
// caller; none are retried, since none are transient.
var (
	// ErrDataUnavailable indicates the input dataset file is missing or unreadable.
	ErrDataUnavailable = errors.New("dataset unavailable")
	// ErrSchemaMismatch indicates a required column is absent or has the wrong type.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrTrainingDataInsufficient indicates too few usable rows remain after filtering.
	ErrTrainingDataInsufficient = errors.New("training data insufficient")
	// ErrArtifactMissing indicates the model artifact file does not exist.
	ErrArtifactMissing = errors.New("artifact missing")
	// ErrArtifactCorrupt indicates the artifact exists but cannot be decoded,
	// fails its checksum, or carries an incompatible schema hash.
	ErrArtifactCorrupt = errors.New("artifact corrupt")
	// ErrUnseenCategory indicates an inference-time categorical value absent
	// from the fit-time vocabulary under the UnseenError policy.
	ErrUnseenCategory = errors.New("unseen category")
)

// Validation sentinels.
var (
	ErrInvalidVehicle   = errors.New("invalid vehicle")
	ErrUnsupportedMake  = errors.New("unsupported make")
	ErrUnsupportedModel = errors.New("unsupported model")
	ErrYearOutOfRange   = errors.New("year out of range")
	ErrEmptyComplaint   = errors.New("empty complaint text")
)

// FieldError wraps a sentinel with the offending field and value.
type FieldError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Wrapped }

// NewFieldError creates a FieldError.
func NewFieldError(field, value string, wrapped error) *FieldError {
	return &FieldError{Field: field, Value: value, Wrapped: wrapped}
}
