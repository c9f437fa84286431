package brepio

import "errors"

type fakeSurface struct {
	kind SurfaceKind
}

func (s fakeSurface) Kind() SurfaceKind { return s.kind }

type fakePlane struct {
	p Plane
}

func (fakePlane) Kind() SurfaceKind { return SurfacePlane }
func (f fakePlane) Plane() Plane    { return f.p }

// evalFunc adapts a function to DerivativeEvaluator.
type evalFunc func(u, v float64) (Derivatives, error)

func (f evalFunc) EvaluateDerivatives(_ Surface, u, v float64) (Derivatives, error) {
	return f(u, v)
}

type fakeFace struct {
	name string
	or   Orientation
	null bool
}

func (f *fakeFace) Orientation() Orientation { return f.or }
func (f *fakeFace) IsNull() bool             { return f.null }

type fakeShape struct {
	faces []Face
}

func (s *fakeShape) IsNull() bool { return s == nil }

// fakeKernel serves fakeShape faces. Every face shares tri; a nil tri
// leaves faces without triangulation.
type fakeKernel struct {
	evalFunc
	tri      *Triangulation
	explored int
}

var errFake = errors.New("fake")

func (k *fakeKernel) CleanTriangulation(Shape) error          { return nil }
func (k *fakeKernel) IncrementalMesh(Shape, MeshParams) error { return nil }
func (k *fakeKernel) GetSurface(Face) Surface                 { return fakeSurface{kind: SurfacePlane} }

func (k *fakeKernel) ExploreFaces(shape Shape) FaceExplorer {
	k.explored++
	return &sliceExplorer{faces: shape.(*fakeShape).faces}
}

func (k *fakeKernel) GetTriangulation(Face) (*Triangulation, Location, bool) {
	return k.tri, Location{}, k.tri != nil
}

// panicFace panics when asked for its orientation.
type panicFace struct{}

func (panicFace) Orientation() Orientation { panic("orientation fault") }

type sliceExplorer struct {
	faces []Face
	i     int
}

func (e *sliceExplorer) More() bool    { return e.i < len(e.faces) }
func (e *sliceExplorer) Next()         { e.i++ }
func (e *sliceExplorer) Current() Face { return e.faces[e.i] }
