package di

// A Module is a collection of container options.
// It can be used to export a re-usable group of related services.
//
// Example:
//
//	var JobsModule = di.Module{
//		di.WithService(NewDB),
//		di.WithService(NewStore, di.Scoped),
//		di.WithService(NewReportJob, di.Transient),
//	}
type Module []ContainerOption

func (m Module) applyContainer(c *Container) error {
	return applyOptions(m, func(opt ContainerOption) error {
		return opt.applyContainer(c)
	})
}

// WithModule applies the options in a [Module] when calling [NewContainer] or [Container.NewScope].
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithModule(JobsModule), // var JobsModule di.Module
//		di.WithService(NewHandler),
//	)
func WithModule(m Module) ContainerOption {
	return m
}
