package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindLaunchFailure     ErrorKind = "launch_failure"
	KindTimeoutExceeded   ErrorKind = "timeout_exceeded"
	KindUnexpected        ErrorKind = "unexpected_error"
	KindExpectationFailed ErrorKind = "expectation_failed"
)

// CheckError classifies a failure that happened while driving the
// external program.
type CheckError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *CheckError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// KindOf reports the ErrorKind carried by err. Errors that were never
// classified are unexpected.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnexpected
}
