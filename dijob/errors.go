package dijob

import (
	"github.com/sectrean/di-jobs/internal/errors"
)

var (
	// ErrInvalidArgument is returned when a required argument is missing.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrResolutionFailed is returned when a job or dependency cannot be created.
	// The error also wraps the underlying container error.
	ErrResolutionFailed = errors.New("resolution failed")
	// ErrUseAfterDispose is returned when a disposed Scope is used.
	ErrUseAfterDispose = errors.New("scope disposed")
	// ErrDisposalFailed is returned when one or more instances failed to close
	// while disposing a Scope. The error also wraps every close error.
	ErrDisposalFailed = errors.New("disposal failed")
)

func invalidArgument(msg string) error {
	return errors.Mark(errors.New(msg), ErrInvalidArgument)
}

func resolutionFailed(err error) error {
	if errors.Is(err, ErrResolutionFailed) {
		return err
	}
	return errors.Mark(err, ErrResolutionFailed)
}
