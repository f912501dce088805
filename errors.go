package di

import (
	"github.com/sectrean/di-jobs/internal/errors"
)

var (
	// ErrServiceNotRegistered is returned when a type is not registered with the Container
	// or any of its parents.
	ErrServiceNotRegistered = errors.New("service not registered")
	// ErrDependencyCycle is returned when a dependency cycle is detected.
	ErrDependencyCycle = errors.New("dependency cycle detected")
	// ErrContainerClosed is returned when a closed Container is used.
	ErrContainerClosed = errors.New("container closed")
)
