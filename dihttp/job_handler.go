package dihttp

import (
	"log/slog"
	"net/http"
	"reflect"

	"github.com/google/uuid"

	"github.com/sectrean/di-jobs"
	"github.com/sectrean/di-jobs/dijob"
	"github.com/sectrean/di-jobs/internal/errors"
)

// JobIDHeader is the request header used for the job ID.
// A new UUID is used if the header is not set.
const JobIDHeader = "X-Job-ID"

// NewJobHandler creates an [http.Handler] that runs a job of type t for each request.
//
// Each request gets a new [dijob.JobContext]. Its ID is taken from the [JobIDHeader] header,
// and the URL query parameters become the job parameters. The job is run with [dijob.Perform],
// so the job scope is disposed before the response is written.
//
// The job ID is written to the [JobIDHeader] response header. A successful job writes
// 204 No Content.
//
// Available options:
//   - [WithQueue]: Set the queue name for the job context.
//   - [WithJobFunc]: Set the function used to run the job.
//   - [WithJobErrorHandler]: Set the error handler for when the job fails.
func NewJobHandler(a dijob.ScopeActivator, t reflect.Type, opts ...JobHandlerOption) (http.Handler, error) {
	if a == nil {
		return nil, errors.New("dihttp.NewJobHandler: activator is nil")
	}
	if t == nil {
		return nil, errors.New("dihttp.NewJobHandler: job type is nil")
	}

	h := &jobHandler{
		a:            a,
		t:            t,
		errorHandler: defaultJobErrorHandler,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		if opt == nil {
			errs = errs.Append(errors.New("option is nil"))
			continue
		}
		errs = errs.Append(opt.applyJobHandler(h))
	}
	if err := errs.Wrap("dihttp.NewJobHandler"); err != nil {
		return nil, err
	}

	return h, nil
}

// JobErrorHandler is a function that writes an error response to the client.
// This is called by the job handler when the job could not be run or returned an error.
//
// The default handler logs the error to [slog.Default] and writes a status code for the error.
type JobErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultJobErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error running job",
		"job_id", w.Header().Get(JobIDHeader),
		"error", err,
	)

	code := StatusCode(err)
	http.Error(w, http.StatusText(code), code)
}

// StatusCode returns the HTTP status code for a job error.
//
//   - [di.ErrServiceNotRegistered]: 404 Not Found.
//   - [dijob.ErrInvalidArgument]: 400 Bad Request.
//   - Anything else: 500 Internal Server Error.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, di.ErrServiceNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, dijob.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type jobHandler struct {
	a            dijob.ScopeActivator
	t            reflect.Type
	queue        string
	fn           dijob.JobFunc
	errorHandler JobErrorHandler
}

func (h *jobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jc := h.newJobContext(r)
	w.Header().Set(JobIDHeader, jc.ID)

	var err error
	if h.fn == nil {
		err = dijob.Perform(r.Context(), h.a, jc)
	} else {
		err = dijob.PerformFunc(r.Context(), h.a, jc, h.fn)
	}
	if err != nil {
		h.errorHandler(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *jobHandler) newJobContext(r *http.Request) *dijob.JobContext {
	id := r.Header.Get(JobIDHeader)
	if id == "" {
		id = uuid.NewString()
	}

	var params map[string]string
	if query := r.URL.Query(); len(query) > 0 {
		params = make(map[string]string, len(query))
		for name := range query {
			params[name] = query.Get(name)
		}
	}

	return &dijob.JobContext{
		ID:     id,
		Queue:  h.queue,
		Type:   h.t,
		Params: params,
	}
}
