package brepio

import (
	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// Location is a rigid transform mapping a face's local triangulation
// into its shape's global frame.
//
// The matrix is column-major as in go3d: m[3] holds the translation and
// m[0..2] the rotated basis vectors. The zero value is the identity.
type Location struct {
	m   mat4.T
	set bool
}

// IdentityLocation returns the identity transform.
func IdentityLocation() Location {
	return Location{}
}

// Translation creates a pure translation.
func Translation(x, y, z float64) Location {
	m := mat4.Ident
	m[3][0], m[3][1], m[3][2] = x, y, z
	return Location{m: m, set: true}
}

// Rotation creates a rotation of angle radians about axis through the origin.
// A zero axis yields the identity.
func Rotation(axis vec3.T, angle float64) Location {
	if axis.Length() == 0 || angle == 0 {
		return Location{}
	}
	axis.Normalize()
	q := quaternion.FromAxisAngle(&axis, angle)
	var m mat4.T
	m.AssignQuaternion(&q)
	return Location{m: m, set: true}
}

// LocationFromMatrix wraps a go3d matrix. Only the rotation and translation
// parts are used; the caller is responsible for the matrix being rigid.
func LocationFromMatrix(m mat4.T) Location {
	return Location{m: m, set: true}
}

// Matrix returns the transform as a go3d matrix.
func (l Location) Matrix() mat4.T {
	if !l.set {
		return mat4.Ident
	}
	return l.m
}

// IsIdentity reports whether l leaves every point unchanged.
func (l Location) IsIdentity() bool {
	return !l.set || l.m == mat4.Ident
}

// Multiply composes two locations: the result applies other first, then l.
func (l Location) Multiply(other Location) Location {
	if !other.set {
		return l
	}
	if !l.set {
		return other
	}
	var r mat4.T
	r.AssignMul(&l.m, &other.m)
	return Location{m: r, set: true}
}

// Inverse returns the inverse transform, assuming l is rigid.
func (l Location) Inverse() Location {
	if !l.set {
		return l
	}
	r := l.m
	t := vec3.T{r[3][0], r[3][1], r[3][2]}
	r[3] = mat4.Ident[3]
	r.Transpose3x3()
	t = r.MulVec3W(&t, 0)
	t.Invert()
	r.SetTranslation(&t)
	return Location{m: r, set: true}
}

// TransformPoint applies rotation and translation to p.
func (l Location) TransformPoint(p vec3.T) vec3.T {
	if !l.set {
		return p
	}
	return l.m.MulVec3W(&p, 1)
}

// TransformDirection applies only the rotational component to d.
func (l Location) TransformDirection(d vec3.T) vec3.T {
	if !l.set {
		return d
	}
	return l.m.MulVec3W(&d, 0)
}
