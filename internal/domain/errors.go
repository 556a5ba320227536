package domain

import "fmt"

// ValidationError reports bad or missing setup input. It is fatal and raised
// before any aggregation begins.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

func Validationf(format string, args ...any) *ValidationError {
    return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// SetupError means a sheet is not laid out the way the run expects, for
// example sprint dates not marked in a timesheet. It names its subject
// (member or sheet) and is fatal for that subject only.
type SetupError struct {
    Subject string
    Msg     string
}

func (e *SetupError) Error() string { return fmt.Sprintf("setup [%s]: %s", e.Subject, e.Msg) }

func Setupf(subject, format string, args ...any) *SetupError {
    return &SetupError{Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// FetchError wraps a transport failure talking to the issue tracker. Callers
// retry a bounded number of times and then skip the entity.
type FetchError struct {
    Key string
    Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Key, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }
