package dijob

import (
	"log/slog"
	"slices"

	"github.com/sectrean/di-jobs"
	"github.com/sectrean/di-jobs/internal/errors"
)

// ActivatorOption is used to configure an activator when calling [New],
// [NewContainerActivator] or [NewTrackingActivator].
//
// Available options:
//   - [WithLogger]
//   - [WithScopeOptions]
type ActivatorOption interface {
	applyActivator(*activatorConfig) error
}

type activatorOption func(*activatorConfig) error

func (o activatorOption) applyActivator(c *activatorConfig) error {
	return o(c)
}

type activatorConfig struct {
	logger       *slog.Logger
	scopeOpts    []di.ContainerOption
	scopeOptsSet bool
}

func newActivatorConfig(opts []ActivatorOption) (activatorConfig, error) {
	cfg := activatorConfig{
		logger: slog.Default(),
	}

	var errs errors.MultiError
	for _, opt := range opts {
		if opt == nil {
			errs = errs.Append(errors.New("option is nil"))
			continue
		}
		errs = errs.Append(opt.applyActivator(&cfg))
	}

	return cfg, errs.Join()
}

// WithLogger sets the logger used for scope events.
//
// The default is [slog.Default].
func WithLogger(logger *slog.Logger) ActivatorOption {
	return activatorOption(func(c *activatorConfig) error {
		if logger == nil {
			return errors.New("with logger: logger is nil")
		}

		c.logger = logger
		return nil
	})
}

// WithScopeOptions sets the options to use when calling [di.Container.NewScope] for each job.
//
// This can be used to register services that only exist inside a job scope.
// It is only supported by [NewContainerActivator].
func WithScopeOptions(opts ...di.ContainerOption) ActivatorOption {
	return activatorOption(func(c *activatorConfig) error {
		c.scopeOpts = append(slices.Clip(c.scopeOpts), opts...)
		c.scopeOptsSet = true
		return nil
	})
}
