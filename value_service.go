package di

import (
	"reflect"

	"github.com/sectrean/di-jobs/internal/errors"
)

// valueService is a service registered with an existing value.
// Values are always Singleton and are not closed unless [WithCloser] or [WithCloseFunc] is used.
type valueService struct {
	owner         *Container
	t             reflect.Type
	val           any
	aliases       []reflect.Type
	closerFactory closerFactory
}

func newValueService(owner *Container, val any, opts ...ServiceOption) (*valueService, error) {
	t := reflect.TypeOf(val)
	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	svc := &valueService{
		owner: owner,
		t:     t,
		val:   val,
	}

	err := applyOptions(opts, func(opt ServiceOption) error {
		return opt.applyService(svc)
	})
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *valueService) Type() reflect.Type {
	return s.t
}

func (s *valueService) Owner() *Container {
	return s.owner
}

func (*valueService) Lifetime() Lifetime {
	return Singleton
}

func (*valueService) setLifetime(l Lifetime) error {
	if l != Singleton {
		return errors.Errorf("lifetime %s: value services are always Singleton", l)
	}
	return nil
}

func (s *valueService) Aliases() []reflect.Type {
	return s.aliases
}

func (s *valueService) addAlias(alias reflect.Type) {
	s.aliases = append(s.aliases, alias)
}

func (*valueService) Dependencies() []reflect.Type {
	return nil
}

func (s *valueService) New([]reflect.Value) (any, error) {
	return s.val, nil
}

func (s *valueService) CloserFor(val any) Closer {
	if isNil(val) || s.closerFactory == nil {
		return nil
	}

	return s.closerFactory(val)
}

func (s *valueService) setCloserFactory(cf closerFactory) {
	s.closerFactory = cf
}

func (s *valueService) String() string {
	return s.t.String()
}

var _ service = (*valueService)(nil)
