package media

import (
	"errors"
	"fmt"
)

// Pipeline stages. Every *Error carries exactly one of them.
var (
	ErrValidation  = errors.New("validation error")
	ErrTranscode   = errors.New("transcode error")
	ErrNegotiation = errors.New("negotiation error")
	ErrTransfer    = errors.New("transfer error")
	ErrDeletion    = errors.New("deletion error")
)

// Error is a pipeline failure. Message is safe to show to the end user;
// Err keeps the internal cause for logs.
type Error struct {
	Stage   error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Stage, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%v: %s", e.Stage, e.Message)
	default:
		return e.Stage.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage}
	}
	return []error{e.Stage, e.Err}
}

// NewError builds a pipeline error for stage.
func NewError(stage error, message string, err error) *Error {
	return &Error{Stage: stage, Message: message, Err: err}
}

// Wrap attaches stage to err unless err already is a pipeline error.
func Wrap(stage error, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Stage: stage, Err: err}
}

// UserMessage returns the user-facing text carried by err, or fallback when
// err has none. Internal details never leak through it.
func UserMessage(err error, fallback string) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return fallback
}
