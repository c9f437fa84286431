package refkernel

import "github.com/gogpu/brepio"

// FaceFault injects faults into kernel calls for one face.
type FaceFault struct {
	// EmptyMesh makes meshing produce a triangulation without triangles.
	EmptyMesh bool
	// NoTriangulation makes meshing leave the face without a triangulation.
	NoTriangulation bool
	// ExtraTriangles are appended to the triangulation after meshing.
	ExtraTriangles [][3]int
	// DropUVNodes removes parametric coordinates from the triangulation.
	DropUVNodes bool
	// NoSurface makes GetSurface return nil.
	NoSurface bool
	// SurfacePanic makes GetSurface panic.
	SurfacePanic bool
	// EvalFault is consulted before every derivative evaluation; a non-nil
	// error fails that evaluation.
	EvalFault func(u, v float64) error
	// EvalPanics turns EvalFault errors into panics.
	EvalPanics bool
}

// faultySurface wraps a surface whose evaluation is subject to a FaceFault.
type faultySurface struct {
	Surface
	fault FaceFault
}

func (s *faultySurface) eval(u, v float64) (brepio.Derivatives, error) {
	if err := s.fault.EvalFault(u, v); err != nil {
		if s.fault.EvalPanics {
			panic(err)
		}
		return brepio.Derivatives{}, err
	}
	return s.Surface.D1(u, v), nil
}

// planeFaultySurface keeps the brepio.PlaneSurface interface visible for
// wrapped planes.
type planeFaultySurface struct {
	*faultySurface
}

func (s planeFaultySurface) Plane() brepio.Plane {
	return s.Surface.(*PlaneSurface).Plane()
}
