package di

import (
	"context"
	"reflect"
	"sync/atomic"

	"github.com/sectrean/di-jobs/internal/errors"
)

// Scope allows you to resolve services.
//
// A Scope can be injected into functions to allow them to resolve services. However,
// it cannot be used within the constructor function. It can be stored in a struct or
// used in a closure after the constructor function has returned.
//
// Scope is implemented by *Container.
type Scope interface {
	// Contains returns true if the Scope has a service of the given type.
	Contains(t reflect.Type) bool

	// Resolve returns a service of the given type from the Scope.
	Resolve(ctx context.Context, t reflect.Type) (any, error)
}

// Resolve a service of type T from the [Scope].
func Resolve[T any](ctx context.Context, s Scope) (T, error) {
	var val T
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[T]())
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, err
}

// MustResolve resolves a service of type T from the [Scope].
//
// If the service cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, s Scope) T {
	val, err := Resolve[T](ctx, s)
	if err != nil {
		panic(err)
	}
	return val
}

func newInjectedScope(s Scope, svc service) (*injectedScope, func()) {
	wrapper := &injectedScope{
		svc:   svc,
		scope: s,
	}

	return wrapper, wrapper.setReady
}

// injectedScope wraps a Container to be injected as a Scope dependency.
type injectedScope struct {
	// svc is the service the Scope is getting injected into
	svc   service
	scope Scope
	ready atomic.Bool
}

func (s *injectedScope) setReady() {
	s.ready.Store(true)
}

func (s *injectedScope) Contains(t reflect.Type) bool {
	return s.scope.Contains(t)
}

func (s *injectedScope) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	if !s.ready.Load() {
		return nil, errors.Errorf(
			"resolve %s: resolve not supported on di.Scope while resolving %s: "+
				"the scope must be stored and used later",
			t, s.svc.Type(),
		)
	}

	return s.scope.Resolve(ctx, t)
}

var _ Scope = (*injectedScope)(nil)
