// Package mocks contains testify mocks for the interfaces used by the tests.
package mocks

import (
	"context"
	"reflect"

	"github.com/stretchr/testify/mock"
)

// JobActivator is a mock of dijob.JobActivator.
type JobActivator struct {
	mock.Mock
}

func (m *JobActivator) ActivateJob(ctx context.Context, t reflect.Type) (any, error) {
	args := m.Called(ctx, t)
	return args.Get(0), args.Error(1)
}

// Closer is a mock of di.Closer.
type Closer struct {
	mock.Mock
}

func (m *Closer) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
