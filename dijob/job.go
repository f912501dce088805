package dijob

import (
	"context"
	"fmt"
	"reflect"

	"github.com/sectrean/di-jobs/internal/errors"
)

// JobContext describes a single job execution.
//
// It is passed to [ScopeActivator.BeginScope]. A [ContainerActivator] registers it with the
// job scope, so services can depend on *JobContext.
type JobContext struct {
	// ID identifies the job execution.
	ID string
	// Queue is the name of the queue the job was taken from.
	Queue string
	// Type is the job type to resolve.
	Type reflect.Type
	// Params holds job parameters set by the host.
	Params map[string]string
}

// Param returns the job parameter with the given name.
func (jc *JobContext) Param(name string) (string, bool) {
	if jc == nil {
		return "", false
	}

	v, ok := jc.Params[name]
	return v, ok
}

func (jc *JobContext) jobID() string {
	if jc == nil {
		return ""
	}
	return jc.ID
}

func (jc *JobContext) String() string {
	if jc == nil {
		return "<nil>"
	}
	return fmt.Sprintf("job %q (%v)", jc.ID, jc.Type)
}

// Job is implemented by job types run with [Perform].
type Job interface {
	Perform(ctx context.Context) error
}

// JobFunc runs a job resolved by [PerformFunc].
type JobFunc func(ctx context.Context, job any) error

// Perform runs the job described by jc in a new scope.
//
// The job type must implement [Job]. See [PerformFunc].
func Perform(ctx context.Context, a ScopeActivator, jc *JobContext) error {
	return PerformFunc(ctx, a, jc, func(ctx context.Context, job any) error {
		j, ok := job.(Job)
		if !ok {
			return errors.Errorf("%T does not implement dijob.Job", job)
		}

		return j.Perform(ctx)
	})
}

// PerformFunc begins a scope with a, resolves jc.Type from it and calls fn with the job.
//
// The context passed to fn carries the scope, see [ScopeFromContext].
//
// The scope is always disposed, even when resolving or running the job fails or fn panics.
// Disposal does not observe cancellation of ctx. The returned error joins the job error
// and the disposal error.
func PerformFunc(
	ctx context.Context,
	a ScopeActivator,
	jc *JobContext,
	fn JobFunc,
) (err error) {
	switch {
	case a == nil:
		return errors.Wrap(invalidArgument("activator is nil"), "dijob.Perform")
	case jc == nil || jc.Type == nil:
		return errors.Wrap(invalidArgument("job type is nil"), "dijob.Perform")
	case fn == nil:
		return errors.Wrap(invalidArgument("fn is nil"), "dijob.Perform")
	}

	scope, err := a.BeginScope(ctx, jc)
	if err != nil {
		return errors.Wrapf(err, "dijob.Perform %s", jc)
	}

	defer func() {
		disposeErr := scope.DisposeScope(context.WithoutCancel(ctx))
		err = errors.Join(err, errors.Wrapf(disposeErr, "dijob.Perform %s", jc))
	}()

	ctx = WithScope(ctx, scope)

	job, err := scope.Resolve(ctx, jc.Type)
	if err != nil {
		return errors.Wrapf(err, "dijob.Perform %s", jc)
	}

	return errors.Wrapf(fn(ctx, job), "dijob.Perform %s", jc)
}
