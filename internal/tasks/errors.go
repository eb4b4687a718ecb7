package tasks

import (
	"errors"
	"fmt"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"
)

// Kind classifies core errors so callers can decide whether to retry,
// prompt the user, or abandon.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindInvalidTransition     Kind = "invalid_transition"
	KindMissingReportEvidence Kind = "missing_report_evidence"
	KindEmptyFeedback         Kind = "empty_feedback"
	KindFeedbackTooLong       Kind = "feedback_too_long"
	KindNotFound              Kind = "not_found"
	KindRepositoryUnavailable Kind = "repository_unavailable"
)

// Error is the error type returned by the task core. It carries the kind
// plus the offending field or task ID so no failure is opaque to the caller.
type Error struct {
	Kind   Kind
	Field  string
	TaskID string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.TaskID != "":
		return fmt.Sprintf("%s: %s (task %s)", e.Kind, e.Msg, e.TaskID)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the field/ID details attached.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel values for errors.Is checks.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition}
	ErrMissingReportEvidence = &Error{Kind: KindMissingReportEvidence}
	ErrEmptyFeedback         = &Error{Kind: KindEmptyFeedback}
	ErrFeedbackTooLong       = &Error{Kind: KindFeedbackTooLong}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrRepositoryUnavailable = &Error{Kind: KindRepositoryUnavailable}
)

func validationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func notFoundError(taskID string) *Error {
	return &Error{Kind: KindNotFound, TaskID: taskID, Msg: "task not found"}
}

func invalidTransitionError(taskID string, from, to models.TaskStatus) *Error {
	return &Error{
		Kind:   KindInvalidTransition,
		TaskID: taskID,
		Msg:    fmt.Sprintf("no transition from %q to %q", from, to),
	}
}

func missingReportError(taskID string) *Error {
	return &Error{
		Kind:   KindMissingReportEvidence,
		Field:  "reportLink",
		TaskID: taskID,
		Msg:    "completing a task requires a report link",
	}
}

func unavailableError(err error) *Error {
	return &Error{Kind: KindRepositoryUnavailable, Err: err}
}

// ErrorKind extracts the kind from a core error, or "" for foreign errors.
func ErrorKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
