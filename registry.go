package brepio

import (
	"fmt"
	"sort"
	"sync"
)

// KernelFactory creates a GeometryKernel instance.
type KernelFactory func() GeometryKernel

var (
	kernelsMu sync.RWMutex
	kernels   = make(map[string]KernelFactory)
)

// RegisterKernel makes a kernel available by name, following the
// database/sql driver pattern:
//
//	func init() {
//	    brepio.RegisterKernel("reference", func() brepio.GeometryKernel {
//	        return New()
//	    })
//	}
//
// RegisterKernel panics if factory is nil or name is already registered.
func RegisterKernel(name string, factory KernelFactory) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()

	if factory == nil {
		panic("brepio: RegisterKernel factory is nil")
	}
	if _, dup := kernels[name]; dup {
		panic("brepio: RegisterKernel called twice for " + name)
	}
	kernels[name] = factory
}

// UnregisterKernel removes a kernel. Mostly useful in tests.
func UnregisterKernel(name string) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	delete(kernels, name)
}

// NewKernel creates a kernel by registered name.
func NewKernel(name string) (GeometryKernel, error) {
	kernelsMu.RLock()
	factory, ok := kernels[name]
	kernelsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("brepio: unknown kernel %q (forgotten import?)", name)
	}
	return factory(), nil
}

// Kernels returns the registered kernel names, sorted.
func Kernels() []string {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()

	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
