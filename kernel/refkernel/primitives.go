package refkernel

import (
	"math"
	"strconv"

	"github.com/gogpu/brepio"
	"github.com/ungerik/go3d/float64/vec3"
)

var (
	axisX = vec3.T{1, 0, 0}
	axisY = vec3.T{0, 1, 0}
	axisZ = vec3.T{0, 0, 1}
)

// Box creates an axis-aligned box with one corner at the origin.
//
// Each side lies on a plane whose normal points along the positive axis;
// the three faces on the minimum sides are therefore Reversed so that
// every face points outward.
func Box(name string, dx, dy, dz float64) *Shape {
	rect := func(path string, o, x, y vec3.T, ulen, vlen float64, or brepio.Orientation) *Face {
		return &Face{
			path:        path,
			orientation: or,
			surface:     &PlaneSurface{Origin: o, XDir: x, YDir: y},
			dom:         domain{umax: ulen, vmax: vlen},
			size:        math.Max(ulen, vlen),
		}
	}
	return newShape(name,
		rect("bottom", vec3.T{}, axisX, axisY, dx, dy, brepio.Reversed),
		rect("top", vec3.T{0, 0, dz}, axisX, axisY, dx, dy, brepio.Forward),
		rect("front", vec3.T{}, axisZ, axisX, dz, dx, brepio.Reversed),
		rect("back", vec3.T{0, dy, 0}, axisZ, axisX, dz, dx, brepio.Forward),
		rect("left", vec3.T{}, axisY, axisZ, dy, dz, brepio.Reversed),
		rect("right", vec3.T{dx, 0, 0}, axisY, axisZ, dy, dz, brepio.Forward),
	)
}

// Cylinder creates a cylinder of radius r and height h standing on the
// XY plane, centered on the Z axis: a cylindrical side and two disk caps.
func Cylinder(name string, r, h float64) *Shape {
	size := math.Max(2*r, h)
	disk := func(path string, z float64, or brepio.Orientation) *Face {
		return &Face{
			path:        path,
			orientation: or,
			surface:     &PlaneSurface{Origin: vec3.T{0, 0, z}, XDir: axisX, YDir: axisY},
			dom:         domain{disk: r},
			size:        2 * r,
		}
	}
	side := &Face{
		path:        "side",
		orientation: brepio.Forward,
		surface:     &CylinderSurface{Axis: axisZ, XDir: axisX, Radius: r},
		dom:         domain{umax: 2 * math.Pi, vmax: h},
		size:        size,
	}
	return newShape(name, side, disk("bottom", 0, brepio.Reversed), disk("top", h, brepio.Forward))
}

// Sphere creates a sphere of radius r centered on the origin.
func Sphere(name string, r float64) *Shape {
	return newShape(name, &Face{
		path:        "surface",
		orientation: brepio.Forward,
		surface:     &SphereSurface{Axis: axisZ, XDir: axisX, Radius: r},
		dom:         domain{umax: 2 * math.Pi, vmin: -math.Pi / 2, vmax: math.Pi / 2},
		size:        2 * r,
	})
}

// Compound groups copies of children into one shape. Face paths are
// prefixed with the child name; a name already used by an earlier child
// gets a "#n" suffix, n counting from 2, so face keys stay unique.
// Children are not modified.
func Compound(name string, children ...*Shape) *Shape {
	var faces []*Face
	used := make(map[string]bool, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		prefix := c.name
		for n := 2; used[prefix]; n++ {
			prefix = c.name + "#" + strconv.Itoa(n)
		}
		used[prefix] = true
		for _, f := range c.faces {
			if f == nil {
				faces = append(faces, nil)
				continue
			}
			faces = append(faces, f.clone(name, prefix, brepio.Location{}))
		}
	}
	return newShape(name, faces...)
}

// Transformed returns a copy of s with loc applied on top of every face
// location. The copy keeps the name of s and has no triangulation.
func Transformed(s *Shape, loc brepio.Location) *Shape {
	faces := make([]*Face, len(s.faces))
	for i, f := range s.faces {
		if f != nil {
			faces[i] = f.clone(s.name, "", loc)
		}
	}
	return newShape(s.name, faces...)
}

// PlanarFace creates a single rectangular planar face, mostly for tests.
func PlanarFace(name string, w, h float64) *Shape {
	return newShape(name, &Face{
		path:        "face",
		orientation: brepio.Forward,
		surface:     &PlaneSurface{XDir: axisX, YDir: axisY},
		dom:         domain{umax: w, vmax: h},
		size:        math.Max(w, h),
	})
}
