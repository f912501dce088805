/*
Package dihttp provides an HTTP handler that runs jobs through a [dijob.ScopeActivator],
with a new job scope for each request.

Example:

	package main

	import (
		"net/http"
		"reflect"

		"github.com/sectrean/di-jobs"
		"github.com/sectrean/di-jobs/dihttp"
		"github.com/sectrean/di-jobs/dijob"
	)

	func main() {
		c, err := di.NewContainer(
			di.WithService(NewDB),
			di.WithService(NewUnitOfWork, di.Scoped),
			di.WithService(NewSendReportJob, di.Transient),
		)

		activator, err := dijob.NewContainerActivator(c)

		// Run a *SendReportJob for every request
		handler, err := dihttp.NewJobHandler(activator,
			reflect.TypeFor[*SendReportJob](),
			dihttp.WithQueue("reports"),
		)

		http.Handle("POST /jobs/send-report", handler)
		http.ListenAndServe(":8080", nil)
	}
*/
package dihttp
