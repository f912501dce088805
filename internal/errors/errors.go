package errors

import (
	stderrors "errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return stderrors.New(msg)
}

// Errorf returns an error with the given message.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Join returns an error that wraps the given errors.
//
// Returns nil if every error is nil.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Wrap returns an error with the given message and wraps the original error.
//
// Returns nil if the original error is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf returns an error with a formatted message and wraps the original error.
//
// Returns nil if the original error is nil.
func Wrapf(err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", fmt.Sprintf(msg, args...), err)
}

// Mark returns an error that matches both kind and err with [errors.Is].
// The message is "kind: err".
//
// Returns nil if err is nil.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", kind, err)
}
