package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures so callers can tell infrastructure
// problems apart from document problems.
type ErrorKind string

const (
	KindLaunch           ErrorKind = "launch_failure"
	KindNavigation       ErrorKind = "navigation_failure"
	KindReadinessTimeout ErrorKind = "readiness_timeout"
	KindCapture          ErrorKind = "capture_failure"
	KindInvalidTemplate  ErrorKind = "invalid_template"
)

// Sentinel errors matched through errors.Is.
var (
	ErrLaunchFailure    = errors.New("browser launch failed")
	ErrNavigation       = errors.New("content injection failed")
	ErrReadinessTimeout = errors.New("document never signalled readiness")
	ErrCaptureFailure   = errors.New("pdf capture failed")
	ErrInvalidTemplate  = errors.New("invalid template")
)

var sentinels = map[ErrorKind]error{
	KindLaunch:           ErrLaunchFailure,
	KindNavigation:       ErrNavigation,
	KindReadinessTimeout: ErrReadinessTimeout,
	KindCapture:          ErrCaptureFailure,
	KindInvalidTemplate:  ErrInvalidTemplate,
}

// PipelineError is a fatal failure of one render job.
type PipelineError struct {
	Kind  ErrorKind
	State string
	Cause error
}

func (e *PipelineError) Error() string {
	msg := sentinels[e.Kind].Error()
	if e.State != "" {
		msg = fmt.Sprintf("%s (state %s)", msg, e.State)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for the error's kind.
func (e *PipelineError) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf extracts the kind of a pipeline error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
