package di

import (
	"reflect"

	"github.com/sectrean/di-jobs/internal/errors"
)

// WithService registers the provided function or value with a new Container
// when calling [NewContainer] or [Container.NewScope].
//
// If a function is provided, it will be called to create the service when resolved.
// The function can take any number of arguments which will also be resolved from the Container.
// The function may also accept a [context.Context] or [di.Scope].
// The function must return a service, or the service and an error.
// The service will be registered as the return type of the function (struct, pointer, or interface).
//
// If a value is provided, it will be returned as the service when resolved.
// The value can be a struct or pointer.
//
// Available options:
//   - [Lifetime] is used to specify how services are created when resolved.
//   - [As] registers an alias for a service.
//   - [WithCloseFunc] specifies a function to be called when the service is closed.
//   - [IgnoreCloser] specifies that the service should not be closed by the Container.
//   - [WithCloser] specifies that a value service should be closed by the Container.
func WithService(funcOrValue any, opts ...ServiceOption) ContainerOption {
	return containerOption(func(c *Container) error {
		if funcOrValue == nil {
			return errors.New("with service: funcOrValue is nil")
		}

		if _, ok := funcOrValue.(ServiceOption); ok {
			return errors.Errorf("with service %T: unexpected ServiceOption as funcOrValue", funcOrValue)
		}

		var svc service
		var err error
		if reflect.TypeOf(funcOrValue).Kind() == reflect.Func {
			svc, err = newFuncService(c, funcOrValue, opts...)
		} else {
			svc, err = newValueService(c, funcOrValue, opts...)
		}

		if err != nil {
			return errors.Wrapf(err, "with service %T", funcOrValue)
		}

		c.register(svc)
		return nil
	})
}

// ContainerOption is used to configure a new [Container] when calling [NewContainer]
// or [Container.NewScope].
type ContainerOption interface {
	applyContainer(*Container) error
}

type containerOption func(*Container) error

func (o containerOption) applyContainer(c *Container) error {
	return o(c)
}

// ServiceOption is used to configure service registration when calling [WithService].
type ServiceOption interface {
	applyService(service) error
}

type serviceOption func(service) error

func (o serviceOption) applyService(s service) error {
	return o(s)
}

// As registers an alias for a service. Use when calling [WithService].
//
// The service can then be resolved as T as well as its own type.
func As[T any]() ServiceOption {
	return serviceOption(func(s service) error {
		alias := reflect.TypeFor[T]()
		if !s.Type().AssignableTo(alias) {
			return errors.Errorf("as %s: type %s not assignable to %s", alias, s.Type(), alias)
		}

		s.addAlias(alias)
		return nil
	})
}

func validateServiceType(t reflect.Type) error {
	switch t {
	// These are the only special types used by the Container.
	case typeContext, typeScope, typeError:
		return errors.New("invalid service type")
	}

	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Struct:
		return nil
	}

	return errors.New("invalid service type")
}

// service provides information about a service and how to resolve it.
type service interface {
	// Type returns the type of the service.
	Type() reflect.Type

	// Owner returns the Container the service was registered with.
	Owner() *Container

	Lifetime() Lifetime
	setLifetime(Lifetime) error

	// Aliases returns the additional types this service can be resolved as.
	Aliases() []reflect.Type
	addAlias(reflect.Type)

	// Dependencies returns the types of the services that this service depends on.
	Dependencies() []reflect.Type

	// New uses the dependencies to create a new instance of the service.
	New(deps []reflect.Value) (any, error)

	// CloserFor returns a Closer for a value created by the service, or nil.
	CloserFor(val any) Closer
	setCloserFactory(closerFactory)
}

type resolveResult struct {
	val any
	err error
}
