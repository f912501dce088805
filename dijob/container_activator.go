package dijob

import (
	"context"
	"log/slog"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-jobs"
	"github.com/sectrean/di-jobs/internal/errors"
)

// ContainerActivator creates jobs from a [di.Container].
//
// Each [Scope] it begins owns a child container created with [di.Container.NewScope].
// [di.Scoped] services are created once per scope, [di.Singleton] services are shared
// by every scope, and disposing a scope closes the child container.
//
// If the scope is begun with a non-nil [JobContext], it is registered with the child
// container so job services can depend on *JobContext.
type ContainerActivator struct {
	c      *di.Container
	cfg    activatorConfig
	active *xsync.Counter
}

var _ ScopeActivator = (*ContainerActivator)(nil)

// NewContainerActivator creates a new [ContainerActivator] for the root container c.
//
// Returns [ErrInvalidArgument] if c is nil.
//
// Available options:
//   - [WithLogger] sets the logger for scope events.
//   - [WithScopeOptions] sets options used to create each child container.
func NewContainerActivator(c *di.Container, opts ...ActivatorOption) (*ContainerActivator, error) {
	if c == nil {
		return nil, errors.Wrap(invalidArgument("container is nil"), "dijob.NewContainerActivator")
	}

	cfg, err := newActivatorConfig(opts)
	if err != nil {
		return nil, errors.Wrap(err, "dijob.NewContainerActivator")
	}

	return &ContainerActivator{
		c:      c,
		cfg:    cfg,
		active: xsync.NewCounter(),
	}, nil
}

// ActivateJob resolves t from the root container.
//
// [di.Transient] instances are not tracked by the root container. The caller owns them.
func (a *ContainerActivator) ActivateJob(ctx context.Context, t reflect.Type) (any, error) {
	val, err := a.c.Resolve(ctx, t)
	if err != nil {
		return nil, errors.Wrap(resolutionFailed(err), "dijob.ContainerActivator.ActivateJob")
	}

	return val, nil
}

// BeginScope creates a child container and returns a [Scope] that owns it.
func (a *ContainerActivator) BeginScope(ctx context.Context, jc *JobContext) (Scope, error) {
	opts := a.cfg.scopeOpts
	if jc != nil {
		opts = append(slices.Clip(opts), di.WithService(jc))
	}

	child, err := a.c.NewScope(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "dijob.ContainerActivator.BeginScope")
	}

	s := &containerScope{
		id:     uuid.New(),
		jobID:  jc.jobID(),
		c:      child,
		logger: a.cfg.logger,
		active: a.active,
	}
	a.active.Inc()

	s.logger.DebugContext(ctx, "job scope started",
		"scope_id", s.id,
		"job_id", s.jobID,
	)

	return s, nil
}

// ActiveScopes returns the number of scopes that have been begun and not disposed.
func (a *ContainerActivator) ActiveScopes() int64 {
	return a.active.Value()
}

// containerScope is the only owner of its child container.
type containerScope struct {
	id       uuid.UUID
	jobID    string
	c        *di.Container
	logger   *slog.Logger
	active   *xsync.Counter
	disposed atomic.Bool
}

func (s *containerScope) ID() uuid.UUID {
	return s.id
}

func (s *containerScope) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	if s.disposed.Load() {
		return nil, errors.Wrapf(ErrUseAfterDispose, "dijob.Scope.Resolve %s", t)
	}

	val, err := s.c.Resolve(ctx, t)
	if err != nil {
		return nil, errors.Wrap(resolutionFailed(err), "dijob.Scope.Resolve")
	}

	return val, nil
}

func (s *containerScope) DisposeScope(ctx context.Context) error {
	if !s.disposed.CompareAndSwap(false, true) {
		return errors.Wrap(ErrUseAfterDispose, "dijob.Scope.DisposeScope")
	}
	s.active.Dec()

	err := s.c.Close(ctx)
	if err != nil {
		err = errors.Mark(err, ErrDisposalFailed)
		s.logger.ErrorContext(ctx, "error disposing job scope",
			"scope_id", s.id,
			"job_id", s.jobID,
			"error", err,
		)
		return errors.Wrap(err, "dijob.Scope.DisposeScope")
	}

	s.logger.DebugContext(ctx, "job scope disposed",
		"scope_id", s.id,
		"job_id", s.jobID,
	)

	return nil
}
