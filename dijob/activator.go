package dijob

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"github.com/sectrean/di-jobs"
	"github.com/sectrean/di-jobs/internal/errors"
)

// JobActivator creates job instances.
//
// ActivateJob resolves t with no scope isolation. Errors wrap [ErrResolutionFailed].
type JobActivator interface {
	ActivateJob(ctx context.Context, t reflect.Type) (any, error)
}

// ScopeActivator is a [JobActivator] that can begin a [Scope] for each job execution.
type ScopeActivator interface {
	JobActivator

	// BeginScope creates a new Scope for a single job execution.
	// jc may be nil.
	BeginScope(ctx context.Context, jc *JobContext) (Scope, error)
}

// Scope resolves types for a single job execution.
//
// A Scope is not safe for concurrent use. The host must call DisposeScope exactly once
// when the job has finished, whether or not it succeeded.
type Scope interface {
	// ID returns a unique identifier for the scope.
	ID() uuid.UUID

	// Resolve returns an instance of t.
	// Errors wrap [ErrResolutionFailed], or [ErrUseAfterDispose] after the scope is disposed.
	Resolve(ctx context.Context, t reflect.Type) (any, error)

	// DisposeScope closes everything the scope created.
	// Errors wrap [ErrDisposalFailed], or [ErrUseAfterDispose] if called more than once.
	DisposeScope(ctx context.Context) error
}

// ActivatorFunc is a function that implements [JobActivator].
type ActivatorFunc func(ctx context.Context, t reflect.Type) (any, error)

// ActivateJob calls f.
func (f ActivatorFunc) ActivateJob(ctx context.Context, t reflect.Type) (any, error) {
	return f(ctx, t)
}

var _ JobActivator = ActivatorFunc(nil)

// New returns a [ScopeActivator] for target.
//
// The scope strategy is picked from what target supports:
//   - *[di.Container]: scopes are child containers, see [NewContainerActivator].
//   - [ScopeActivator]: returned as is. Options are not allowed.
//   - [JobActivator]: scopes track disposable instances, see [NewTrackingActivator].
//
// Returns [ErrInvalidArgument] if target is nil or of any other type.
func New(target any, opts ...ActivatorOption) (ScopeActivator, error) {
	switch v := target.(type) {
	case nil:
		return nil, errors.Wrap(invalidArgument("target is nil"), "dijob.New")

	case *di.Container:
		a, err := NewContainerActivator(v, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "dijob.New")
		}
		return a, nil

	case ScopeActivator:
		if len(opts) > 0 {
			return nil, errors.Wrapf(
				invalidArgument("options are not supported"),
				"dijob.New %T", target)
		}
		return v, nil

	case JobActivator:
		a, err := NewTrackingActivator(v, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "dijob.New")
		}
		return a, nil

	default:
		return nil, errors.Wrapf(
			invalidArgument("target must be a *di.Container or JobActivator"),
			"dijob.New %T", target)
	}
}
