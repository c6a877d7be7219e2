package common

import (
	"errors"
	"fmt"
)

// Pipeline stages, used in log attributes and error messages.
const (
	StageLoad    = "load"
	StageAnalyze = "analyze"
	StageCompose = "compose"
	StageStore   = "store"
	StageIndex   = "index"
)

// ErrRequestSigning marks failures to sign an outbound request, including
// failures to retrieve the credentials used for signing.
var ErrRequestSigning = errors.New("request signing failed")

// NotFoundError is returned when the transcription artifact does not exist.
type NotFoundError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transcript s3://%s/%s not found: %v", e.Bucket, e.Key, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// MalformedInputError is returned when the artifact is not valid JSON or has
// no results.transcripts[0].transcript string.
type MalformedInputError struct {
	Key    string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed transcript %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed transcript %s: %s", e.Key, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// AnalysisServiceError carries the name of the analysis operation that failed.
type AnalysisServiceError struct {
	Operation string
	Err       error
}

func (e *AnalysisServiceError) Error() string {
	return fmt.Sprintf("analysis %s failed: %v", e.Operation, e.Err)
}

func (e *AnalysisServiceError) Unwrap() error { return e.Err }

type StoreWriteError struct {
	Sink string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s write failed: %v", e.Sink, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

type IndexWriteError struct {
	Sink string
	Err  error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("%s index write failed: %v", e.Sink, e.Err)
}

func (e *IndexWriteError) Unwrap() error { return e.Err }

// StageOf maps a pipeline error to the stage that produced it.
func StageOf(err error) string {
	var (
		notFound  *NotFoundError
		malformed *MalformedInputError
		analysis  *AnalysisServiceError
		store     *StoreWriteError
		index     *IndexWriteError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &malformed):
		return StageLoad
	case errors.As(err, &analysis):
		return StageAnalyze
	case errors.As(err, &store):
		return StageStore
	case errors.As(err, &index):
		return StageIndex
	default:
		return "unknown"
	}
}
