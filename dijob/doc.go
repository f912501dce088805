/*
Package dijob lets a background job host create job instances, and their dependencies,
through a [di.Container] with one scope per job execution.

The host creates one [ScopeActivator] at startup. For every job execution it calls
[ScopeActivator.BeginScope], resolves the job type through the returned [Scope], runs the
job and then calls [Scope.DisposeScope], even when the job failed. Disposing the scope closes
every [di.Scoped] and [di.Transient] service created for the job. [di.Singleton] services
belong to the root container and are shared by all scopes.

Hosts that only have a plain [JobActivator], with no child container support, can use
[NewTrackingActivator]. Its scopes remember every resolved instance that has a Close method
and close them in resolution order.

Example:

	package main

	import (
		"context"
		"log/slog"
		"reflect"

		"github.com/sectrean/di-jobs"
		"github.com/sectrean/di-jobs/dijob"
	)

	func main() {
		ctx := context.Background()

		c, err := di.NewContainer(
			di.WithService(NewDB),
			di.WithService(NewUnitOfWork, di.Scoped),
			di.WithService(NewSendReportJob, di.Transient),
		)
		if err != nil {
			slog.ErrorContext(ctx, "error creating container", "error", err)
			return
		}

		activator, err := dijob.NewContainerActivator(c)
		if err != nil {
			slog.ErrorContext(ctx, "error creating activator", "error", err)
			return
		}

		// Begins a scope, resolves and runs the job, then disposes the scope
		err = dijob.Perform(ctx, activator, &dijob.JobContext{
			ID:   "42",
			Type: reflect.TypeFor[*SendReportJob](),
		})
		if err != nil {
			slog.ErrorContext(ctx, "job failed", "error", err)
		}
	}
*/
package dijob
