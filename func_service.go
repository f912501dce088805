package di

import (
	"reflect"

	"github.com/sectrean/di-jobs/internal/errors"
)

type funcService struct {
	owner         *Container
	t             reflect.Type
	fn            reflect.Value
	lifetime      Lifetime
	aliases       []reflect.Type
	deps          []reflect.Type
	closerFactory closerFactory
}

func newFuncService(owner *Container, fn any, opts ...ServiceOption) (*funcService, error) {
	fnType := reflect.TypeOf(fn)

	// Get the return type
	var t reflect.Type
	switch {
	case fnType.NumOut() == 1:
		t = fnType.Out(0)
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		t = fnType.Out(0)
	default:
		return nil, errors.New("function must return Service or (Service, error)")
	}

	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	if fnType.IsVariadic() {
		return nil, errors.New("variadic functions are not supported")
	}

	deps := make([]reflect.Type, fnType.NumIn())
	for i := range deps {
		deps[i] = fnType.In(i)
	}

	svc := &funcService{
		owner:         owner,
		t:             t,
		fn:            reflect.ValueOf(fn),
		deps:          deps,
		closerFactory: getCloser,
	}

	err := applyOptions(opts, func(opt ServiceOption) error {
		return opt.applyService(svc)
	})
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *funcService) Type() reflect.Type {
	return s.t
}

func (s *funcService) Owner() *Container {
	return s.owner
}

func (s *funcService) Lifetime() Lifetime {
	return s.lifetime
}

func (s *funcService) setLifetime(l Lifetime) error {
	s.lifetime = l
	return nil
}

func (s *funcService) Aliases() []reflect.Type {
	return s.aliases
}

func (s *funcService) addAlias(alias reflect.Type) {
	s.aliases = append(s.aliases, alias)
}

func (s *funcService) Dependencies() []reflect.Type {
	return s.deps
}

func (s *funcService) New(deps []reflect.Value) (any, error) {
	out := s.fn.Call(deps)
	val := out[0].Interface()

	var err error
	if len(out) == 2 && !out[1].IsNil() {
		err = out[1].Interface().(error)
	}

	return val, err
}

func (s *funcService) CloserFor(val any) Closer {
	if isNil(val) || s.closerFactory == nil {
		return nil
	}

	return s.closerFactory(val)
}

func (s *funcService) setCloserFactory(cf closerFactory) {
	s.closerFactory = cf
}

func (s *funcService) String() string {
	return s.fn.Type().String()
}

var _ service = (*funcService)(nil)
