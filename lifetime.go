package di

import "fmt"

// Lifetime specifies how services are created when resolved.
//
// Available lifetimes:
//   - [Singleton] specifies that a service is created once and subsequent requests return the same instance.
//   - [Transient] specifies that a service is created for each request.
//   - [Scoped] specifies that a service is created once per scope.
type Lifetime uint8

const (
	// Singleton specifies that a service is created once and subsequent requests to resolve return the same instance.
	//
	// The instance is owned by the Container the service was registered with. Child scopes share it,
	// and it is closed when that Container is closed.
	//
	// This is the default lifetime for services.
	Singleton Lifetime = iota

	// Transient specifies that a service is created for each request.
	//
	// The instance is closed with the scope it was resolved from. Instances resolved
	// directly from a root Container are not tracked and are owned by the caller.
	Transient

	// Scoped specifies that a service is created once per scope.
	//
	// Each Container that resolves the service gets its own instance, which is closed
	// with that Container.
	Scoped
)

func (l Lifetime) applyService(s service) error {
	return s.setLifetime(l)
}

var _ ServiceOption = Singleton

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Transient:
		return "Transient"
	case Scoped:
		return "Scoped"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
