package dihttp

import (
	"github.com/sectrean/di-jobs/dijob"
	"github.com/sectrean/di-jobs/internal/errors"
)

// JobHandlerOption is an option used to configure the job handler when calling [NewJobHandler].
type JobHandlerOption interface {
	applyJobHandler(*jobHandler) error
}

type jobHandlerOption func(*jobHandler) error

func (o jobHandlerOption) applyJobHandler(h *jobHandler) error {
	return o(h)
}

// WithQueue sets the queue name on each [dijob.JobContext].
func WithQueue(name string) JobHandlerOption {
	return jobHandlerOption(func(h *jobHandler) error {
		h.queue = name
		return nil
	})
}

// WithJobFunc sets the function used to run the resolved job.
//
// By default the job must implement [dijob.Job].
func WithJobFunc(fn dijob.JobFunc) JobHandlerOption {
	return jobHandlerOption(func(h *jobHandler) error {
		if fn == nil {
			return errors.New("WithJobFunc: fn is nil")
		}

		h.fn = fn
		return nil
	})
}

// WithJobErrorHandler sets the error handler for when the job fails.
func WithJobErrorHandler(fn JobErrorHandler) JobHandlerOption {
	return jobHandlerOption(func(h *jobHandler) error {
		if fn == nil {
			return errors.New("WithJobErrorHandler: h is nil")
		}

		h.errorHandler = fn
		return nil
	})
}
