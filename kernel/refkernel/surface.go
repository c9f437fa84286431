package refkernel

import (
	"math"

	"github.com/gogpu/brepio"
	"github.com/ungerik/go3d/float64/vec3"
)

// Surface is an analytic surface evaluable by the reference kernel.
type Surface interface {
	brepio.Surface
	// D1 returns the point and first derivatives at (u, v).
	D1(u, v float64) brepio.Derivatives
	// radii returns the curvature radius along u and v; 0 means straight.
	radii() (ru, rv float64)
}

// PlaneSurface is P(u, v) = Origin + u*XDir + v*YDir.
type PlaneSurface struct {
	Origin vec3.T
	XDir   vec3.T
	YDir   vec3.T
}

func (*PlaneSurface) Kind() brepio.SurfaceKind { return brepio.SurfacePlane }

// Plane returns the plane parameters.
func (p *PlaneSurface) Plane() brepio.Plane {
	n := vec3.Cross(&p.XDir, &p.YDir)
	return brepio.Plane{Origin: p.Origin, Normal: unit(n), XDirection: unit(p.XDir)}
}

func (p *PlaneSurface) D1(u, v float64) brepio.Derivatives {
	return brepio.Derivatives{
		Point: sum(p.Origin, p.XDir.Scaled(u), p.YDir.Scaled(v)),
		DU:    p.XDir,
		DV:    p.YDir,
	}
}

func (*PlaneSurface) radii() (float64, float64) { return 0, 0 }

// CylinderSurface is a cylinder of Radius around Axis through Origin.
// u is the angle from XDir, v the height along Axis.
type CylinderSurface struct {
	Origin vec3.T
	Axis   vec3.T
	XDir   vec3.T
	Radius float64
}

func (*CylinderSurface) Kind() brepio.SurfaceKind { return brepio.SurfaceCylinder }

func (c *CylinderSurface) D1(u, v float64) brepio.Derivatives {
	x, y, z := frame(c.Axis, c.XDir)
	sin, cos := math.Sincos(u)
	r := c.Radius
	return brepio.Derivatives{
		Point: sum(c.Origin, x.Scaled(r*cos), y.Scaled(r*sin), z.Scaled(v)),
		DU:    sum(x.Scaled(-r*sin), y.Scaled(r*cos)),
		DV:    z,
	}
}

func (c *CylinderSurface) radii() (float64, float64) { return c.Radius, 0 }

// SphereSurface is a sphere of Radius around Center.
// u is the longitude from XDir, v the latitude in [-pi/2, pi/2].
// The parametrization is degenerate at the poles.
type SphereSurface struct {
	Center vec3.T
	Axis   vec3.T
	XDir   vec3.T
	Radius float64
}

func (*SphereSurface) Kind() brepio.SurfaceKind { return brepio.SurfaceSphere }

func (s *SphereSurface) D1(u, v float64) brepio.Derivatives {
	x, y, z := frame(s.Axis, s.XDir)
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	r := s.Radius
	radial := sum(x.Scaled(cu), y.Scaled(su))
	return brepio.Derivatives{
		Point: sum(s.Center, radial.Scaled(r*cv), z.Scaled(r*sv)),
		DU:    sum(x.Scaled(-r*cv*su), y.Scaled(r*cv*cu)),
		DV:    sum(radial.Scaled(-r*sv), z.Scaled(r*cv)),
	}
}

func (s *SphereSurface) radii() (float64, float64) { return s.Radius, s.Radius }

// frame returns an orthonormal right-handed basis (x, y, z) with z along
// axis and x as close to xdir as possible.
func frame(axis, xdir vec3.T) (x, y, z vec3.T) {
	z = unit(axis)
	d := vec3.Dot(&xdir, &z)
	x = unit(sum(xdir, z.Scaled(-d)))
	y = vec3.Cross(&z, &x)
	return x, y, z
}

func sum(vs ...vec3.T) vec3.T {
	var r vec3.T
	for _, v := range vs {
		r[0] += v[0]
		r[1] += v[1]
		r[2] += v[2]
	}
	return r
}

func unit(v vec3.T) vec3.T {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scaled(1 / l)
}
