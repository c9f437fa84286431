package brepio

import (
	"github.com/gogpu/brepio/document"
	"github.com/ungerik/go3d/float64/vec3"
)

// Surface type tags written under the "TYPE" key.
const (
	SurfaceTypePlane   = "Plane"
	SurfaceTypeUnknown = "UNKNOWN"
)

// DescribeSurface returns the document description of s, or nil when s is
// nil. Only planes get a structured description; every other surface kind
// is tagged UNKNOWN.
//
// Plane parameters are mapped into the shape frame by loc, the same
// location applied to the face's triangulation.
func DescribeSurface(s Surface, loc Location) *document.Object {
	if s == nil {
		return nil
	}
	if s.Kind() != SurfacePlane {
		return document.NewObject().Set("TYPE", document.String(SurfaceTypeUnknown))
	}

	out := document.NewObject().Set("TYPE", document.String(SurfaceTypePlane))
	ps, ok := s.(PlaneSurface)
	if !ok {
		return out
	}
	p := ps.Plane()
	p = Plane{
		Origin:     loc.TransformPoint(p.Origin),
		Normal:     loc.TransformDirection(p.Normal),
		XDirection: loc.TransformDirection(p.XDirection),
	}
	coef := p.Coefficients()
	out.Set("origin", vecDoc(p.Origin)).
		Set("normal", vecDoc(p.Normal)).
		Set("xdir", vecDoc(p.XDirection)).
		Set("coefficients", document.Array{
			document.Number(coef[0]), document.Number(coef[1]),
			document.Number(coef[2]), document.Number(coef[3]),
		})
	return out
}

// planeNormal returns the unit plane normal of s in the shape frame.
func planeNormal(s Surface, loc Location) (vec3.T, bool) {
	ps, ok := s.(PlaneSurface)
	if !ok {
		return vec3.T{}, false
	}
	n := loc.TransformDirection(ps.Plane().Normal)
	l := n.Length()
	if l <= Confusion {
		return vec3.T{}, false
	}
	return n.Scaled(1 / l), true
}
