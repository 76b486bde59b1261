// Package apperrors defines the error taxonomy shared by every layer.
// Lower layers wrap and propagate; only the blog service is allowed to
// continue past a non-fatal sub-step failure, and it reports that failure
// in its result.
package apperrors

import "fmt"

// ValidationError reports a missing or malformed required field.
// Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing identity or an ownership mismatch
// between a post and the blog it was addressed through.
type NotFoundError struct {
	Kind string // "blog", "post", "image"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ExternalServiceError reports a failed store, index or tool call with
// the original cause attached. Callers may retry at their discretion; the
// core never retries on its own.
type ExternalServiceError struct {
	Service string // "mongo", "redis", "exiftool", "filesystem", "kafka"
	Op      string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// ConsistencyError reports a detected violation of a record invariant,
// such as a post count that disagrees with the embedded summary array.
type ConsistencyError struct {
	BlogID string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: blog %s: %s", e.BlogID, e.Detail)
}

// DivergenceError reports that on-disk state was mutated but the
// corresponding record failed to persist. The caller decides whether to
// retry the save or clean up the orphaned files.
type DivergenceError struct {
	Op    string
	Paths []string
	Err   error
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("record/file divergence in %s (%d files written): %v", e.Op, len(e.Paths), e.Err)
}

func (e *DivergenceError) Unwrap() error { return e.Err }

// ImageProcessingError reports a fatal failure while building a
// derivative set, identifying the image and the failing stage. No partial
// derivative set is considered valid.
type ImageProcessingError struct {
	Name  string
	Stage string // "extract", "decode", "convert", "resize", "encode", "rotate", "write"
	Err   error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image %s: %s failed: %v", e.Name, e.Stage, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }
