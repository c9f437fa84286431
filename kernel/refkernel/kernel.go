package refkernel

import (
	"errors"
	"fmt"

	"github.com/gogpu/brepio"
	"github.com/gogpu/brepio/cache"
)

// Name is the registry name of the reference kernel.
const Name = "reference"

func init() {
	brepio.RegisterKernel(Name, func() brepio.GeometryKernel { return New() })
}

var (
	// ErrForeignShape is returned for shapes not created by this package.
	ErrForeignShape = errors.New("refkernel: shape not created by refkernel")
	// ErrUnsupportedSurface is returned when evaluating a foreign surface.
	ErrUnsupportedSurface = errors.New("refkernel: unsupported surface")
)

// Kernel implements brepio.GeometryKernel over reference shapes.
// Triangulations live on the shapes. A Kernel created by New also keeps a
// cache of triangulations keyed by surface, domain and resolution, shared
// between faces with identical geometry. The zero Kernel meshes uncached.
type Kernel struct {
	meshes *cache.Cache[string, *brepio.Triangulation]
}

// New creates a reference kernel with a mesh cache.
func New() *Kernel {
	return &Kernel{meshes: cache.New[string, *brepio.Triangulation](cache.DefaultCapacity)}
}

// CacheStats returns the mesh cache counters. The zero Kernel reports
// zero stats.
func (k *Kernel) CacheStats() cache.Stats {
	if k.meshes == nil {
		return cache.Stats{}
	}
	return k.meshes.Stats()
}

var _ brepio.GeometryKernel = (*Kernel)(nil)

func asShape(shape brepio.Shape) (*Shape, error) {
	s, ok := shape.(*Shape)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignShape, shape)
	}
	return s, nil
}

// CleanTriangulation discards the triangulation of every face.
func (k *Kernel) CleanTriangulation(shape brepio.Shape) error {
	s, err := asShape(shape)
	if err != nil {
		return err
	}
	for _, f := range s.faces {
		if f != nil {
			f.tri = nil
		}
	}
	return nil
}

// IncrementalMesh triangulates faces that have no triangulation yet.
// Faces are meshed sequentially in traversal order regardless of
// params.Parallel.
func (k *Kernel) IncrementalMesh(shape brepio.Shape, params brepio.MeshParams) error {
	s, err := asShape(shape)
	if err != nil {
		return err
	}
	s.meshCalls++
	if s.meshPanic != nil {
		panic(s.meshPanic)
	}
	if s.meshErr != nil {
		return s.meshErr
	}
	if !(params.Deflection > 0) {
		return fmt.Errorf("refkernel: deflection must be positive, got %v", params.Deflection)
	}
	for _, f := range s.faces {
		if f == nil || f.tri != nil {
			continue
		}
		f.tri = applyMeshFault(k.meshFace(f, params), f.fault)
	}
	return nil
}

// ExploreFaces returns an explorer over the faces of shape, including null
// entries. Foreign shapes yield an empty explorer.
func (k *Kernel) ExploreFaces(shape brepio.Shape) brepio.FaceExplorer {
	s, err := asShape(shape)
	if err != nil {
		return &explorer{}
	}
	return &explorer{faces: s.faces}
}

// GetTriangulation returns the face triangulation and location.
func (k *Kernel) GetTriangulation(face brepio.Face) (*brepio.Triangulation, brepio.Location, bool) {
	f, ok := face.(*Face)
	if !ok || f == nil || f.tri == nil {
		return nil, brepio.Location{}, false
	}
	return f.tri, f.loc, true
}

// GetSurface returns the face surface, wrapped when evaluation faults are
// configured.
func (k *Kernel) GetSurface(face brepio.Face) brepio.Surface {
	f, ok := face.(*Face)
	if !ok || f == nil {
		return nil
	}
	if f.fault.SurfacePanic {
		panic("refkernel: surface lookup fault on " + f.StableKey())
	}
	if f.fault.NoSurface || f.surface == nil {
		return nil
	}
	if f.fault.EvalFault != nil {
		fs := &faultySurface{Surface: f.surface, fault: f.fault}
		if _, isPlane := f.surface.(*PlaneSurface); isPlane {
			return planeFaultySurface{fs}
		}
		return fs
	}
	return f.surface
}

// EvaluateDerivatives evaluates a surface returned by GetSurface.
func (k *Kernel) EvaluateDerivatives(s brepio.Surface, u, v float64) (brepio.Derivatives, error) {
	switch sf := s.(type) {
	case *faultySurface:
		return sf.eval(u, v)
	case planeFaultySurface:
		return sf.eval(u, v)
	case Surface:
		return sf.D1(u, v), nil
	default:
		return brepio.Derivatives{}, fmt.Errorf("%w: %T", ErrUnsupportedSurface, s)
	}
}

type explorer struct {
	faces []*Face
	i     int
}

func (e *explorer) More() bool { return e.i < len(e.faces) }

func (e *explorer) Next() { e.i++ }

func (e *explorer) Current() brepio.Face {
	f := e.faces[e.i]
	if f == nil {
		return nil
	}
	return f
}
