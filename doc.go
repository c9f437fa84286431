// Package brepio converts boundary-represented solid models into mesh
// documents for viewers, pickers and exporters.
//
// # Overview
//
// brepio does not model or mesh geometry itself. It drives a
// [GeometryKernel] (cleaning, meshing, surface evaluation) and turns the
// resulting per-face triangulations into a [document.Document]:
//
//	{
//	  "faces": [
//	    {
//	      "surface":  {"TYPE": "Plane", ...} | {"TYPE": "UNKNOWN"},
//	      "tess":     [ [[p0,p1,p2], [n0,n1,n2]?], ... ],
//	      "inverted": false,
//	      "ref":      "6f1c...",
//	      "ptr":      17
//	    }
//	  ]
//	}
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/brepio"
//	    "github.com/gogpu/brepio/kernel/refkernel"
//	)
//
//	k := refkernel.New()
//	s, err := brepio.NewSession(k)
//	if err != nil {
//	    return err
//	}
//	doc, err := s.Interrogate(refkernel.Box("cube", 10, 10, 10), 1.0, false)
//
// # Pipeline
//
// An interrogation runs, synchronously and in order: validate the shape,
// clean its triangulation, mesh it (deflection normalized into
// (0, 1000], relative, angular deflection 0.5, never parallel), then for
// each face: classify its surface, extract its tessellation (per-vertex
// normals for non-planar surfaces only), assign its stable reference and
// append its entry.
//
// # Fault isolation
//
// Only an invalid shape ([ErrInvalidInput]) and clean or meshing failures
// ([ErrMeshing]) are returned to the caller. A fault while processing one
// face skips that face; an out-of-range triangle skips that triangle; a
// failing or degenerate normal evaluation yields [DefaultNormal]. Each
// fallback is visible in the [Report] returned by [Session.Run].
//
// # Concurrency
//
// Interrogation of one shape must be serialized by the caller because
// cleaning and meshing mutate state stored on the shape. A [Session] may be
// shared between goroutines working on distinct shapes.
package brepio

// Version is the current version of the library.
const Version = "0.1.0"
