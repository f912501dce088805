package dijob

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-jobs"
	"github.com/sectrean/di-jobs/internal/errors"
)

// TrackingActivator adds scopes to a plain [JobActivator] that has no notion of child containers.
//
// Its scopes are [TrackingScope]s: they remember every resolved instance that has a
// Close method (see [di.AsCloser]) and close them when the scope is disposed.
type TrackingActivator struct {
	a      JobActivator
	logger *slog.Logger
	active *xsync.Counter
}

var _ ScopeActivator = (*TrackingActivator)(nil)

// NewTrackingActivator creates a new [TrackingActivator] wrapping a.
//
// Returns [ErrInvalidArgument] if a is nil.
//
// Available options:
//   - [WithLogger] sets the logger for scope events.
func NewTrackingActivator(a JobActivator, opts ...ActivatorOption) (*TrackingActivator, error) {
	if a == nil {
		return nil, errors.Wrap(invalidArgument("activator is nil"), "dijob.NewTrackingActivator")
	}

	cfg, err := newActivatorConfig(opts)
	if err == nil && cfg.scopeOptsSet {
		err = errors.New("with scope options: not supported without a container")
	}
	if err != nil {
		return nil, errors.Wrap(err, "dijob.NewTrackingActivator")
	}

	return &TrackingActivator{
		a:      a,
		logger: cfg.logger,
		active: xsync.NewCounter(),
	}, nil
}

// ActivateJob calls the wrapped activator. Nothing is tracked.
func (a *TrackingActivator) ActivateJob(ctx context.Context, t reflect.Type) (any, error) {
	val, err := a.a.ActivateJob(ctx, t)
	if err != nil {
		return nil, errors.Wrap(resolutionFailed(err), "dijob.TrackingActivator.ActivateJob")
	}

	return val, nil
}

// BeginScope returns a new [TrackingScope]. The job context is not used.
func (a *TrackingActivator) BeginScope(ctx context.Context, jc *JobContext) (Scope, error) {
	s := newTrackingScope(a.a, a.logger, jc.jobID())
	s.onDispose = a.active.Dec
	a.active.Inc()

	s.logger.DebugContext(ctx, "job scope started",
		"scope_id", s.id,
		"job_id", s.jobID,
	)

	return s, nil
}

// ActiveScopes returns the number of scopes that have been begun and not disposed.
func (a *TrackingActivator) ActiveScopes() int64 {
	return a.active.Value()
}

// TrackingScope is a [Scope] for activators without child container support.
//
// Every resolved instance that has a Close method is tracked in resolution order.
// DisposeScope closes all of them in that order. A failing Close does not stop the
// remaining instances from being closed; all failures are returned together.
type TrackingScope struct {
	id        uuid.UUID
	jobID     string
	a         JobActivator
	logger    *slog.Logger
	onDispose func()
	mu        sync.Mutex
	tracked   []trackedInstance
	disposed  atomic.Bool
}

var _ Scope = (*TrackingScope)(nil)

type trackedInstance struct {
	t      reflect.Type
	closer di.Closer
}

// NewTrackingScope creates a standalone [TrackingScope] over a.
//
// Returns [ErrInvalidArgument] if a is nil.
func NewTrackingScope(a JobActivator) (*TrackingScope, error) {
	if a == nil {
		return nil, errors.Wrap(invalidArgument("activator is nil"), "dijob.NewTrackingScope")
	}

	return newTrackingScope(a, slog.Default(), ""), nil
}

func newTrackingScope(a JobActivator, logger *slog.Logger, jobID string) *TrackingScope {
	return &TrackingScope{
		id:     uuid.New(),
		jobID:  jobID,
		a:      a,
		logger: logger,
	}
}

// ID returns a unique identifier for the scope.
func (s *TrackingScope) ID() uuid.UUID {
	return s.id
}

// Resolve creates an instance of t with the wrapped activator and tracks it
// if it has a Close method.
func (s *TrackingScope) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	if s.disposed.Load() {
		return nil, errors.Wrapf(ErrUseAfterDispose, "dijob.TrackingScope.Resolve %s", t)
	}

	val, err := s.a.ActivateJob(ctx, t)
	if err != nil {
		return nil, errors.Wrap(resolutionFailed(err), "dijob.TrackingScope.Resolve")
	}

	if closer, ok := di.AsCloser(val); ok {
		s.mu.Lock()
		s.tracked = append(s.tracked, trackedInstance{t: t, closer: closer})
		s.mu.Unlock()
	}

	return val, nil
}

// Tracked returns the number of instances that will be closed by DisposeScope.
func (s *TrackingScope) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracked)
}

// DisposeScope closes every tracked instance in the order they were resolved.
func (s *TrackingScope) DisposeScope(ctx context.Context) error {
	if !s.disposed.CompareAndSwap(false, true) {
		return errors.Wrap(ErrUseAfterDispose, "dijob.TrackingScope.DisposeScope")
	}
	if s.onDispose != nil {
		s.onDispose()
	}

	s.mu.Lock()
	tracked := s.tracked
	s.tracked = nil
	s.mu.Unlock()

	var errs errors.MultiError
	for _, inst := range tracked {
		err := inst.closer.Close(ctx)
		errs = errs.Append(errors.Wrapf(err, "close %s", inst.t))
	}

	if err := errs.Join(); err != nil {
		err = errors.Mark(err, ErrDisposalFailed)
		s.logger.ErrorContext(ctx, "error disposing job scope",
			"scope_id", s.id,
			"job_id", s.jobID,
			"failures", len(errs),
			"error", err,
		)
		return errors.Wrap(err, "dijob.TrackingScope.DisposeScope")
	}

	s.logger.DebugContext(ctx, "job scope disposed",
		"scope_id", s.id,
		"job_id", s.jobID,
		"closed", len(tracked),
	)

	return nil
}
