package refkernel

import (
	"github.com/gogpu/brepio"
)

// domain is the parametric extent of a face.
// Faces with a positive disk radius are planar disks centered on the
// plane origin; the rectangle bounds are then unused.
type domain struct {
	umin, umax float64
	vmin, vmax float64
	disk       float64
}

// Face is a face of a reference shape.
type Face struct {
	path        string
	owner       string
	orientation brepio.Orientation
	surface     Surface
	dom         domain
	size        float64
	loc         brepio.Location

	tri   *brepio.Triangulation
	fault FaceFault
}

// Orientation returns the face orientation flag.
func (f *Face) Orientation() brepio.Orientation { return f.orientation }

// IsNull reports whether f is a nil face.
func (f *Face) IsNull() bool { return f == nil }

// StableKey returns "<shape>/<face path>".
func (f *Face) StableKey() string { return f.owner + "/" + f.path }

// Name returns the face path within its shape, such as "top" or "post/side".
func (f *Face) Name() string { return f.path }

// Location returns the face location.
func (f *Face) Location() brepio.Location { return f.loc }

// Triangulation returns the current triangulation, or nil.
func (f *Face) Triangulation() *brepio.Triangulation { return f.tri }

// SetFault configures fault injection for subsequent kernel calls.
func (f *Face) SetFault(ff FaceFault) { f.fault = ff }

func (f *Face) clone(owner, prefix string, loc brepio.Location) *Face {
	c := *f
	c.owner = owner
	if prefix != "" {
		c.path = prefix + "/" + f.path
	}
	c.loc = loc.Multiply(f.loc)
	c.tri = nil
	return &c
}

// Shape is a reference-kernel shape: an ordered list of faces.
// A nil *Shape is a null shape.
type Shape struct {
	name  string
	faces []*Face

	meshErr   error
	meshPanic any
	meshCalls int
}

func newShape(name string, faces ...*Face) *Shape {
	s := &Shape{name: name, faces: faces}
	for _, f := range faces {
		if f != nil {
			f.owner = name
		}
	}
	return s
}

// IsNull reports whether s is nil.
func (s *Shape) IsNull() bool { return s == nil }

// StableKey returns the shape name.
func (s *Shape) StableKey() string { return s.name }

// Name returns the shape name.
func (s *Shape) Name() string { return s.name }

// Faces returns the non-null faces in traversal order.
func (s *Shape) Faces() []*Face {
	out := make([]*Face, 0, len(s.faces))
	for _, f := range s.faces {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Face returns the face with the given path, or nil.
func (s *Shape) Face(path string) *Face {
	for _, f := range s.faces {
		if f != nil && f.path == path {
			return f
		}
	}
	return nil
}

// MeshCalls returns how many times the shape has been meshed.
func (s *Shape) MeshCalls() int { return s.meshCalls }

// SetMeshFault makes the next meshing requests fail with err, or panic
// with p when p is non-nil. Passing (nil, nil) clears the fault.
func (s *Shape) SetMeshFault(err error, p any) {
	s.meshErr = err
	s.meshPanic = p
}

// InsertNullFace inserts a null sub-entity before position i, clamped to
// the face list bounds. Traversal must skip it.
func (s *Shape) InsertNullFace(i int) {
	i = max(0, min(i, len(s.faces)))
	s.faces = append(s.faces, nil)
	copy(s.faces[i+1:], s.faces[i:])
	s.faces[i] = nil
}
