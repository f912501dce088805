package dijob_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-jobs"
	"github.com/sectrean/di-jobs/dijob"
	"github.com/sectrean/di-jobs/internal/testtypes"
	"github.com/sectrean/di-jobs/internal/testutils"
)

var errTest = stderrors.New("test error")

// newJobContainer registers a report job with a Singleton clock, a Scoped store and a Transient mailer.
func newJobContainer(t *testing.T, log *testtypes.CloseLog, opts ...di.ContainerOption) *di.Container {
	t.Helper()

	opts = append([]di.ContainerOption{
		di.WithService(log),
		di.WithService(testtypes.NewClock, di.Singleton),
		di.WithService(testtypes.NewStore, di.Scoped),
		di.WithService(testtypes.NewMailer, di.Transient),
		di.WithService(testtypes.NewReportJob, di.Transient),
	}, opts...)

	c, err := di.NewContainer(opts...)
	require.NoError(t, err)

	return c
}

func Test_NewContainerActivator(t *testing.T) {
	t.Run("nil container", func(t *testing.T) {
		a, err := dijob.NewContainerActivator(nil)
		testutils.LogError(t, err)

		assert.Nil(t, a)
		assert.EqualError(t, err, "dijob.NewContainerActivator: invalid argument: container is nil")
		assert.ErrorIs(t, err, dijob.ErrInvalidArgument)
	})

	t.Run("nil logger", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c, dijob.WithLogger(nil))
		testutils.LogError(t, err)

		assert.Nil(t, a)
		assert.EqualError(t, err, "dijob.NewContainerActivator: with logger: logger is nil")
	})

	t.Run("nil option", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c, nil)
		testutils.LogError(t, err)

		assert.Nil(t, a)
		assert.EqualError(t, err, "dijob.NewContainerActivator: option is nil")
	})

	t.Run("success", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c)
		assert.NotNil(t, a)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), a.ActiveScopes())
	})
}

func Test_ContainerActivator_ActivateJob(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves from root", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		got, err := a.ActivateJob(ctx, testtypes.TypeClock)
		require.NoError(t, err)

		want := di.MustResolve[*testtypes.Clock](ctx, c)
		assert.Same(t, want, got)
	})

	t.Run("transients are not retained by the root", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func() *testtypes.Resource {
				return &testtypes.Resource{Name: "transient"}
			}, di.Transient),
		)
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		var created []*testtypes.Resource
		for i := 0; i < 1000; i++ {
			got, err := a.ActivateJob(ctx, testtypes.TypeResource)
			require.NoError(t, err)
			created = append(created, got.(*testtypes.Resource))
		}

		require.NoError(t, c.Close(ctx))
		for _, r := range created {
			assert.Equal(t, 0, r.Closed())
		}
	})

	t.Run("not registered", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		got, err := a.ActivateJob(ctx, testtypes.TypeStore)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.EqualError(t, err,
			"dijob.ContainerActivator.ActivateJob: resolution failed: resolve *testtypes.Store: service not registered")
		assert.ErrorIs(t, err, dijob.ErrResolutionFailed)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
	})

	t.Run("constructor dependency failure", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func() (*testtypes.Clock, error) { return nil, errTest }),
			di.WithService(func(*testtypes.Clock) *testtypes.Store { return &testtypes.Store{} }),
		)
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		got, err := a.ActivateJob(ctx, testtypes.TypeStore)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.EqualError(t, err,
			"dijob.ContainerActivator.ActivateJob: resolution failed: resolve *testtypes.Store: dependency *testtypes.Clock: test error")
		assert.ErrorIs(t, err, dijob.ErrResolutionFailed)
		assert.ErrorIs(t, err, errTest)
	})
}

func Test_ContainerActivator_BeginScope(t *testing.T) {
	ctx := context.Background()

	t.Run("registers job context", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		jc := &dijob.JobContext{ID: "42", Type: testtypes.TypeReportJob}
		scope, err := a.BeginScope(ctx, jc)
		require.NoError(t, err)

		got, err := dijob.Resolve[*dijob.JobContext](ctx, scope)
		assert.Same(t, jc, got)
		assert.NoError(t, err)

		require.NoError(t, scope.DisposeScope(ctx))
	})

	t.Run("nil job context", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		got, err := dijob.Resolve[*dijob.JobContext](ctx, scope)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, dijob.ErrResolutionFailed)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)

		require.NoError(t, scope.DisposeScope(ctx))
	})

	t.Run("unique scope ids", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope1, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)
		scope2, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		assert.NotEqual(t, scope1.ID(), scope2.ID())
	})

	t.Run("root closed", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		require.NoError(t, c.Close(ctx))

		scope, err := a.BeginScope(ctx, nil)
		testutils.LogError(t, err)

		assert.Nil(t, scope)
		assert.EqualError(t, err, "dijob.ContainerActivator.BeginScope: new scope: container closed")
		assert.ErrorIs(t, err, di.ErrContainerClosed)
		assert.Equal(t, int64(0), a.ActiveScopes())
	})

	t.Run("with scope options", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c,
			dijob.WithScopeOptions(di.WithService(testtypes.NewMailer)),
		)
		require.NoError(t, err)

		_, err = a.ActivateJob(ctx, testtypes.TypeMailer)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)

		scope1, err := a.BeginScope(ctx, &dijob.JobContext{ID: "1"})
		require.NoError(t, err)
		scope2, err := a.BeginScope(ctx, &dijob.JobContext{ID: "2"})
		require.NoError(t, err)

		got1, err := dijob.Resolve[testtypes.Mailer](ctx, scope1)
		require.NoError(t, err)
		got2, err := dijob.Resolve[testtypes.Mailer](ctx, scope2)
		require.NoError(t, err)

		assert.NotSame(t, got1, got2)

		require.NoError(t, scope1.DisposeScope(ctx))
		assert.Equal(t, 1, got1.(*testtypes.SMTPMailer).Closed())
		assert.Equal(t, 0, got2.(*testtypes.SMTPMailer).Closed())

		require.NoError(t, scope2.DisposeScope(ctx))
		assert.Equal(t, 1, got2.(*testtypes.SMTPMailer).Closed())
	})

	t.Run("active scopes", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope1, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)
		scope2, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), a.ActiveScopes())

		require.NoError(t, scope1.DisposeScope(ctx))
		assert.Equal(t, int64(1), a.ActiveScopes())

		assert.Error(t, scope1.DisposeScope(ctx))
		assert.Equal(t, int64(1), a.ActiveScopes())

		require.NoError(t, scope2.DisposeScope(ctx))
		assert.Equal(t, int64(0), a.ActiveScopes())
	})

	t.Run("logs scope events", func(t *testing.T) {
		logger, buf := testutils.NewLogger()
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c, dijob.WithLogger(logger))
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, &dijob.JobContext{ID: "42"})
		require.NoError(t, err)
		require.NoError(t, scope.DisposeScope(ctx))

		out := buf.String()
		assert.Contains(t, out, `msg="job scope started"`)
		assert.Contains(t, out, `msg="job scope disposed"`)
		assert.Contains(t, out, "scope_id="+scope.ID().String())
		assert.Contains(t, out, "job_id=42")
	})
}

func Test_ContainerScope(t *testing.T) {
	ctx := context.Background()

	t.Run("resolve not registered", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		got, err := scope.Resolve(ctx, testtypes.TypeStore)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.EqualError(t, err, "dijob.Scope.Resolve: resolution failed: resolve *testtypes.Store: service not registered")
		assert.ErrorIs(t, err, dijob.ErrResolutionFailed)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
	})

	t.Run("resolve after dispose", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, scope.DisposeScope(ctx))

		got, err := scope.Resolve(ctx, testtypes.TypeStore)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.EqualError(t, err, "dijob.Scope.Resolve *testtypes.Store: scope disposed")
		assert.ErrorIs(t, err, dijob.ErrUseAfterDispose)
	})

	t.Run("dispose twice", func(t *testing.T) {
		log := &testtypes.CloseLog{}
		c := newJobContainer(t, log)
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		_, err = scope.Resolve(ctx, testtypes.TypeStore)
		require.NoError(t, err)

		require.NoError(t, scope.DisposeScope(ctx))
		err = scope.DisposeScope(ctx)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "dijob.Scope.DisposeScope: scope disposed")
		assert.ErrorIs(t, err, dijob.ErrUseAfterDispose)
		assert.Equal(t, []string{"store"}, log.Names())
	})

	t.Run("dispose failure", func(t *testing.T) {
		logger, buf := testutils.NewLogger()
		c, err := di.NewContainer(
			di.WithService(func() *testtypes.Resource {
				return &testtypes.Resource{Name: "resource", Err: errTest}
			}, di.Scoped),
		)
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c, dijob.WithLogger(logger))
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, &dijob.JobContext{ID: "7"})
		require.NoError(t, err)

		res, err := dijob.Resolve[*testtypes.Resource](ctx, scope)
		require.NoError(t, err)

		err = scope.DisposeScope(ctx)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "dijob.Scope.DisposeScope: disposal failed: close: test error")
		assert.ErrorIs(t, err, dijob.ErrDisposalFailed)
		assert.ErrorIs(t, err, errTest)
		assert.Equal(t, 1, res.Closed())
		assert.Equal(t, int64(0), a.ActiveScopes())

		out := buf.String()
		assert.Contains(t, out, `msg="error disposing job scope"`)
		assert.Contains(t, out, "job_id=7")
	})

	t.Run("value service with closer is closed once", func(t *testing.T) {
		res := &testtypes.Resource{Name: "value"}

		c, err := di.NewContainer()
		require.NoError(t, err)

		a, err := dijob.NewContainerActivator(c,
			dijob.WithScopeOptions(di.WithService(res, di.WithCloser())),
		)
		require.NoError(t, err)

		s, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		got, err := s.Resolve(ctx, testtypes.TypeResource)
		require.NoError(t, err)
		assert.Same(t, res, got)

		_, err = s.Resolve(ctx, testtypes.TypeResource)
		require.NoError(t, err)

		require.NoError(t, s.DisposeScope(ctx))
		assert.Equal(t, 1, res.Closed())
	})

	t.Run("dispose closes only scope owned services", func(t *testing.T) {
		log := &testtypes.CloseLog{}
		c := newJobContainer(t, log)
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		job, err := dijob.Resolve[*testtypes.ReportJob](ctx, scope)
		require.NoError(t, err)

		require.NoError(t, scope.DisposeScope(ctx))

		assert.Equal(t, 1, job.Store.Closed())
		assert.Equal(t, 1, job.Mailer.(*testtypes.SMTPMailer).Closed())
		assert.Equal(t, 0, job.Clock.Closed())

		require.NoError(t, c.Close(ctx))
		assert.Equal(t, 1, job.Clock.Closed())
		assert.Equal(t, []string{"store", "clock"}, log.Names())
	})

	t.Run("scope type", func(t *testing.T) {
		c := newJobContainer(t, &testtypes.CloseLog{})
		a, err := dijob.NewContainerActivator(c)
		require.NoError(t, err)

		scope, err := a.BeginScope(ctx, nil)
		require.NoError(t, err)

		assert.Implements(t, (*dijob.Scope)(nil), scope)
		assert.NotEqual(t, reflect.TypeFor[*dijob.TrackingScope](), reflect.TypeOf(scope))
	})
}
