package testtypes

import (
	"fmt"
	"sync/atomic"
)

// Factory creates numbered resources so tests can tell instances apart.
type Factory struct {
	Log   *CloseLog
	Err   error
	count atomic.Int32
}

func (f *Factory) NewResource() *Resource {
	n := f.count.Add(1)
	return &Resource{
		Name: fmt.Sprintf("resource-%d", n),
		Log:  f.Log,
		Err:  f.Err,
	}
}

// Count returns the number of resources created.
func (f *Factory) Count() int {
	return int(f.count.Load())
}
