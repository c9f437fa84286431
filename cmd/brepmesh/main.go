// Command brepmesh interrogates B-rep scenes and writes their mesh
// documents.
//
// Usage:
//
//	brepmesh interrogate [flags] scene.hcl...
//	brepmesh update --deflection 0.5 scene.hcl
//	brepmesh kernels
//
// Settings are read from brepmesh.yaml (see --config) and overridden by
// flags.
package main

import (
	"os"

	// Registers the reference kernel.
	_ "github.com/gogpu/brepio/kernel/refkernel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
