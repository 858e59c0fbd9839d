package types

import (
	"errors"
	"fmt"
	"time"
)

// ClipErrorKind classifies clip extraction failures.
type ClipErrorKind string

const (
	ClipOutOfRange    ClipErrorKind = "out_of_range"
	ClipEmptyRange    ClipErrorKind = "empty_range"
	ClipEncodeFailure ClipErrorKind = "encode_failure"
)

// ClipError reports a failed extraction of a single segment. It aborts
// only that segment's contribution to the compilation.
type ClipError struct {
	Kind  ClipErrorKind
	Start time.Duration
	End   time.Duration
	Cause error
}

func (e *ClipError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("clip [%s, %s) %s: %v", e.Start, e.End, e.Kind, e.Cause)
	}
	return fmt.Sprintf("clip [%s, %s) %s", e.Start, e.End, e.Kind)
}

func (e *ClipError) Unwrap() error { return e.Cause }

// AssemblyErrorKind classifies compilation assembly failures.
type AssemblyErrorKind string

const (
	AssemblyNoClips       AssemblyErrorKind = "no_clips"
	AssemblyEncodeFailure AssemblyErrorKind = "encode_failure"
)

// AssemblyError aborts the whole source video's run; no processing
// record is written.
type AssemblyError struct {
	Kind  AssemblyErrorKind
	Cause error
}

func (e *AssemblyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assembly %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("assembly %s", e.Kind)
}

func (e *AssemblyError) Unwrap() error { return e.Cause }

// LedgerError wraps a failed durable write to the processing ledger.
type LedgerError struct {
	Op    string
	ID    string
	Cause error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.ID, e.Cause)
}

func (e *LedgerError) Unwrap() error { return e.Cause }

// CollaboratorErrorKind classifies failures of external collaborators
// (video source API, downloader, publisher).
type CollaboratorErrorKind string

const (
	CollaboratorRateLimited CollaboratorErrorKind = "rate_limited"
	CollaboratorAuthFailure CollaboratorErrorKind = "auth_failure"
	CollaboratorNotFound    CollaboratorErrorKind = "not_found"
)

// CollaboratorError carries enough context to decide retry policy at
// the call site: RateLimited is retryable, AuthFailure is fatal to the
// process, NotFound skips the video without recording it.
type CollaboratorError struct {
	Kind  CollaboratorErrorKind
	Op    string
	Cause error
}

func (e *CollaboratorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *CollaboratorError) Unwrap() error { return e.Cause }

func collaboratorKind(err error) (CollaboratorErrorKind, bool) {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// IsRateLimited reports whether err is a rate-limit collaborator error.
func IsRateLimited(err error) bool {
	k, ok := collaboratorKind(err)
	return ok && k == CollaboratorRateLimited
}

// IsAuthFailure reports whether err is an authentication failure, which
// requires operator intervention and aborts the whole process.
func IsAuthFailure(err error) bool {
	k, ok := collaboratorKind(err)
	return ok && k == CollaboratorAuthFailure
}

// IsNotFound reports whether err indicates a missing remote entity,
// e.g. a deleted source video.
func IsNotFound(err error) bool {
	k, ok := collaboratorKind(err)
	return ok && k == CollaboratorNotFound
}
