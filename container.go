package di

import (
	"context"
	"reflect"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-jobs/internal/errors"
)

// Container is a dependency injection container.
// It is used to resolve services by first resolving their dependencies.
//
// A Container created with [Container.NewScope] is a child scope. It inherits the services
// registered with its parent, and it owns the [Scoped] and [Transient] instances it resolves.
type Container struct {
	parent    *Container
	services  map[reflect.Type][]service
	resolved  *xsync.MapOf[service, resolveResult]
	createMu  sync.Mutex
	closers   []Closer
	closersMu sync.Mutex
	closedMu  sync.RWMutex
	closed    bool
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new [Container] with the provided options.
//
// Available options:
//   - [WithService] registers a service with a value or constructor function.
//   - [WithModule] registers a group of services.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := newContainer(nil)

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "new container")
	}

	return c, nil
}

func newContainer(parent *Container) *Container {
	return &Container{
		parent:   parent,
		services: make(map[reflect.Type][]service),
		resolved: xsync.NewMapOf[service, resolveResult](),
	}
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	return applyOptions(opts, func(opt ContainerOption) error {
		return opt.applyContainer(c)
	})
}

func (c *Container) register(svc service) {
	c.services[svc.Type()] = append(c.services[svc.Type()], svc)
	for _, alias := range svc.Aliases() {
		c.services[alias] = append(c.services[alias], svc)
	}

	// Value services exist before they are resolved, so they are closed in registration order
	// relative to each other. Only options are applied here, so no lock is needed.
	if vs, ok := svc.(*valueService); ok {
		if closer := vs.CloserFor(vs.val); closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}

func (c *Container) lookupService(t reflect.Type) service {
	for scope := c; scope != nil; scope = scope.parent {
		svcs, ok := scope.services[t]
		if !ok {
			continue
		}

		// The last registration for a type wins
		return svcs[len(svcs)-1]
	}

	return nil
}

// NewScope creates a new child [Container].
//
// Services registered with the parent [Container] will be inherited by the child [Container].
// Additional services can be registered with the new scope if needed and they will be isolated from
// the parent and sibling containers.
//
// Available options:
//   - [WithService] registers a service with a value or a function.
//   - [WithModule] registers a group of services.
func (c *Container) NewScope(opts ...ContainerOption) (*Container, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrap(ErrContainerClosed, "new scope")
	}

	scope := newContainer(c)

	err := scope.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "new scope")
	}

	return scope, nil
}

// Contains returns true if the [Container] or one of its parents has a service
// registered for the given [reflect.Type].
func (c *Container) Contains(t reflect.Type) bool {
	return c.lookupService(t) != nil
}

// Resolve a service of the given [reflect.Type].
//
// The type must be registered with the [Container] or one of its parents.
// This will return an error if the [Container] has been closed.
func (c *Container) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrapf(ErrContainerClosed, "resolve %s", t)
	}

	val, err := c.resolve(ctx, t, make(resolveVisitor))
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", t)
	}

	return val, nil
}

func (c *Container) resolve(ctx context.Context, t reflect.Type, visitor resolveVisitor) (any, error) {
	svc := c.lookupService(t)
	if svc == nil {
		return nil, ErrServiceNotRegistered
	}

	return c.resolveService(ctx, svc, visitor)
}

func (c *Container) resolveService(
	ctx context.Context,
	svc service,
	visitor resolveVisitor,
) (val any, err error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Singletons belong to the Container they were registered with.
	// Scoped and Transient services belong to the current scope.
	scope := c
	lifetime := svc.Lifetime()
	if lifetime == Singleton {
		scope = svc.Owner()
	}

	// The owner of a Singleton may be an ancestor that was closed before this scope
	if scope != c {
		scope.closedMu.RLock()
		defer scope.closedMu.RUnlock()

		if scope.closed {
			return nil, ErrContainerClosed
		}
	}

	if lifetime != Transient {
		if res, ok := scope.resolved.Load(svc); ok {
			return res.val, res.err
		}
	}

	if !visitor.Enter(svc) {
		return nil, ErrDependencyCycle
	}
	defer visitor.Leave(svc)

	deps := svc.Dependencies()
	depVals := make([]reflect.Value, len(deps))
	for i, depType := range deps {
		var depVal any
		var depErr error

		switch depType {
		case typeContext:
			depVal = ctx

		case typeScope:
			var ready func()
			depVal, ready = newInjectedScope(scope, svc)
			defer ready()

		default:
			depVal, depErr = scope.resolve(ctx, depType, visitor)
		}

		if depErr != nil {
			// Stop at the first error
			return nil, errors.Wrapf(depErr, "dependency %s", depType)
		}
		depVals[i] = safeReflectValue(depType, depVal)
	}

	if lifetime != Transient {
		// Lock before creating the service so it is only created once per scope
		scope.createMu.Lock()
		defer scope.createMu.Unlock()

		if res, ok := scope.resolved.Load(svc); ok {
			return res.val, res.err
		}

		defer func() {
			// Failures are not cached so a later resolve can retry
			if err == nil {
				scope.resolved.Store(svc, resolveResult{val: val})
			}
		}()
	}

	val, err = svc.New(depVals)
	if err != nil {
		return nil, err
	}

	if scope.tracks(svc) {
		if closer := svc.CloserFor(val); closer != nil {
			scope.closersMu.Lock()
			scope.closers = append(scope.closers, closer)
			scope.closersMu.Unlock()
		}
	}

	return val, nil
}

// tracks reports whether instances of svc created by c are closed with c.
//
// Value service closers are added when the service is registered.
// Transient instances resolved from a root Container are owned by the caller.
func (c *Container) tracks(svc service) bool {
	if _, ok := svc.(*valueService); ok {
		return false
	}
	if svc.Lifetime() == Transient && c.parent == nil {
		return false
	}
	return true
}

// Close the [Container] and the services it created.
//
// Services are closed in the reverse order they were created.
// Services owned by a parent [Container] are not closed.
// Errors returned from closing services are joined together.
//
// Close will return [ErrContainerClosed] if called more than once.
func (c *Container) Close(ctx context.Context) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errors.Wrap(ErrContainerClosed, "close")
	}
	c.closed = true

	c.closersMu.Lock()
	closers := c.closers
	c.closers = nil
	c.closersMu.Unlock()

	// Close services in LIFO order so dependents close before their dependencies
	var errs errors.MultiError
	for i := len(closers) - 1; i >= 0; i-- {
		errs = errs.Append(closers[i].Close(ctx))
	}

	return errs.Wrap("close")
}

type resolveVisitor map[service]struct{}

func (v resolveVisitor) Enter(s service) bool {
	if _, exists := v[s]; exists {
		return false
	}

	v[s] = struct{}{}
	return true
}

func (v resolveVisitor) Leave(s service) {
	delete(v, s)
}
