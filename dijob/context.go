package dijob

import (
	"context"
	"reflect"

	"github.com/sectrean/di-jobs/internal/errors"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] that carries the provided [Scope].
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFromContext returns the [Scope] stored on the [context.Context], if present.
func ScopeFromContext(ctx context.Context) Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(Scope); ok {
		return s
	}
	return nil
}

// Resolve a value of type T from the [Scope].
func Resolve[T any](ctx context.Context, s Scope) (T, error) {
	var val T
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[T]())
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, err
}

// ResolveFromContext resolves a value of type T from the [Scope] stored on the [context.Context].
func ResolveFromContext[T any](ctx context.Context) (T, error) {
	s := ScopeFromContext(ctx)
	if s == nil {
		var val T
		return val, errors.Errorf("resolve %s from context: scope not found on context", reflect.TypeFor[T]())
	}

	return Resolve[T](ctx, s)
}

// MustResolveFromContext resolves a value of type T from the [Scope] stored on the
// [context.Context].
//
// If the value cannot be resolved, this function will panic.
func MustResolveFromContext[T any](ctx context.Context) T {
	val, err := ResolveFromContext[T](ctx)
	if err != nil {
		panic(err)
	}
	return val
}
