package dijob

import (
	"context"
	"reflect"

	"github.com/sectrean/di-jobs/internal/errors"
)

// Initializer can be implemented by jobs created with [ReflectActivator]
// that need setup after construction.
type Initializer interface {
	Init(ctx context.Context) error
}

// ReflectActivator creates jobs without a container.
//
// A pointer to a struct type gets a new zero struct, and a struct type gets its zero value.
// If the new instance implements [Initializer], Init is called before it is returned.
// Dependencies are not injected.
//
// Use [NewTrackingActivator] to get scopes that close the jobs it creates.
type ReflectActivator struct{}

var _ JobActivator = ReflectActivator{}

// ActivateJob creates a new instance of t.
func (ReflectActivator) ActivateJob(ctx context.Context, t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.Wrap(invalidArgument("type is nil"), "dijob.ReflectActivator.ActivateJob")
	}

	var val any
	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		val = reflect.New(t.Elem()).Interface()
	case t.Kind() == reflect.Struct:
		val = reflect.Zero(t).Interface()
	default:
		err := errors.Errorf("cannot construct %s of kind %s", t, t.Kind())
		return nil, errors.Wrap(resolutionFailed(err), "dijob.ReflectActivator.ActivateJob")
	}

	if init, ok := val.(Initializer); ok {
		if err := init.Init(ctx); err != nil {
			err = errors.Wrapf(err, "init %s", t)
			return nil, errors.Wrap(resolutionFailed(err), "dijob.ReflectActivator.ActivateJob")
		}
	}

	return val, nil
}
