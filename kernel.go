package brepio

import (
	"strconv"

	"github.com/ungerik/go3d/float64/vec3"
)

// Orientation is the orientation flag of a face relative to its surface.
type Orientation uint8

const (
	// Forward faces share the surface normal direction.
	Forward Orientation = iota
	// Reversed faces point opposite to the surface normal.
	Reversed
	// Internal faces lie inside the material, such as a cut left in a solid.
	Internal
	// External faces bound no material on either side.
	External
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Forward:
		return "forward"
	case Reversed:
		return "reversed"
	case Internal:
		return "internal"
	case External:
		return "external"
	default:
		return "Orientation(" + strconv.Itoa(int(o)) + ")"
	}
}

// Shape is an externally owned boundary-represented model.
// brepio borrows a Shape for the duration of a call and never retains it
// beyond identity bookkeeping.
type Shape interface {
	IsNull() bool
}

// Face is a topological surface patch of a Shape.
type Face interface {
	Orientation() Orientation
}

// Keyed is implemented by shapes and faces that can name themselves
// deterministically. Keys feed stable reference generation.
type Keyed interface {
	StableKey() string
}

// SurfaceKind classifies the continuous surface underlying a face.
type SurfaceKind uint8

const (
	// SurfaceOther is any kind not listed below.
	SurfaceOther SurfaceKind = iota
	// SurfacePlane surfaces also implement [PlaneSurface].
	SurfacePlane
	SurfaceCylinder // circular cylinder
	SurfaceCone     // circular cone
	SurfaceSphere   // sphere
	SurfaceTorus    // torus
	SurfaceBSpline  // B-spline or NURBS surface
)

// String returns the surface kind name.
func (k SurfaceKind) String() string {
	switch k {
	case SurfacePlane:
		return "plane"
	case SurfaceCylinder:
		return "cylinder"
	case SurfaceCone:
		return "cone"
	case SurfaceSphere:
		return "sphere"
	case SurfaceTorus:
		return "torus"
	case SurfaceBSpline:
		return "bspline"
	default:
		return "other"
	}
}

// Surface is the continuous geometry of a face.
type Surface interface {
	Kind() SurfaceKind
}

// PlaneSurface is implemented by planar surfaces that expose their
// defining parameters.
type PlaneSurface interface {
	Surface
	Plane() Plane
}

// Plane describes a plane by an origin, a unit normal and a unit
// in-plane X direction.
type Plane struct {
	Origin     vec3.T
	Normal     vec3.T
	XDirection vec3.T
}

// Coefficients returns (a, b, c, d) such that a*x + b*y + c*z + d = 0
// for every point of the plane.
func (p Plane) Coefficients() [4]float64 {
	n := p.Normal
	if l := n.Length(); l > 0 {
		n = n.Scaled(1 / l)
	}
	return [4]float64{n[0], n[1], n[2], -vec3.Dot(&n, &p.Origin)}
}

// UV is a parametric surface coordinate.
type UV [2]float64

// Triangulation is the kernel's discrete approximation of a face.
// Nodes and UVNodes are in the face's local frame; Triangles index Nodes
// with zero-based indices. UVNodes is optional and, when present, is
// parallel to Nodes.
//
// A Triangulation is owned by the kernel and is only valid until the next
// clean or mesh of its shape.
type Triangulation struct {
	Nodes     []vec3.T
	Triangles [][3]int
	UVNodes   []UV
}

// NodeCount returns the number of nodes. A nil triangulation has none.
func (t *Triangulation) NodeCount() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// TriangleCount returns the number of triangles.
func (t *Triangulation) TriangleCount() int {
	if t == nil {
		return 0
	}
	return len(t.Triangles)
}

// HasUVNodes reports whether every node has a parametric coordinate.
func (t *Triangulation) HasUVNodes() bool {
	return t != nil && len(t.UVNodes) > 0 && len(t.UVNodes) == len(t.Nodes)
}

// IsEmpty reports whether the triangulation contributes no geometry.
func (t *Triangulation) IsEmpty() bool {
	return t.NodeCount() == 0 || t.TriangleCount() == 0
}

// MeshParams are the arguments of an incremental meshing request.
type MeshParams struct {
	// Deflection is the linear tessellation tolerance.
	Deflection float64
	// Relative makes Deflection a ratio of each face's size.
	Relative bool
	// AngularDeflection is the maximum angle between adjacent segments, in radians.
	AngularDeflection float64
	// Parallel allows the kernel to mesh faces concurrently.
	Parallel bool
}

// Derivatives holds a surface point and its first partial derivatives.
type Derivatives struct {
	Point vec3.T
	DU    vec3.T
	DV    vec3.T
}

// DerivativeEvaluator evaluates first derivatives of a surface.
type DerivativeEvaluator interface {
	EvaluateDerivatives(s Surface, u, v float64) (Derivatives, error)
}

// FaceExplorer walks the faces of a shape in a fixed order.
// Current may return nil for null sub-entities.
type FaceExplorer interface {
	More() bool
	Current() Face
	Next()
}

// GeometryKernel is the modeling kernel brepio interrogates.
//
// Implementations may signal faults either by returning errors or by
// panicking; brepio recovers panics at node and face granularity.
// CleanTriangulation and IncrementalMesh mutate triangulation state held on
// the shape, so callers must not interrogate the same shape concurrently.
type GeometryKernel interface {
	DerivativeEvaluator

	// CleanTriangulation discards any triangulation stored on shape.
	CleanTriangulation(shape Shape) error
	// IncrementalMesh triangulates every face of shape lacking a triangulation.
	IncrementalMesh(shape Shape, params MeshParams) error
	// ExploreFaces returns a fresh explorer over the faces of shape.
	ExploreFaces(shape Shape) FaceExplorer
	// GetTriangulation returns the triangulation of face and the location
	// mapping it into the shape's frame. ok is false when the face has none.
	GetTriangulation(face Face) (tri *Triangulation, loc Location, ok bool)
	// GetSurface returns the surface of face, or nil.
	GetSurface(face Face) Surface
}
