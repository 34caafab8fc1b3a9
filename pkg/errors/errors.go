package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentUnavailable = errors.New("document unavailable")
	ErrInputUnavailable    = errors.New("input file unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrCacheUnavailable    = errors.New("cache unavailable")
	ErrInternal            = errors.New("internal error")
)

// Exit codes returned by the lse command.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitInvalidInput     = 2
	ExitInputUnavailable = 3
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ExitCode maps err to the process exit status of the lse command.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, ErrDocumentUnavailable), errors.Is(err, ErrInputUnavailable):
		return ExitInputUnavailable
	default:
		return ExitFailure
	}
}
