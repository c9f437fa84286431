package brepio

import "iter"

// FaceHandle is a face yielded by traversal together with its position.
type FaceHandle struct {
	Face Face
	// Ordinal is the zero-based position among the non-null faces of the shape.
	Ordinal int
	// Orientation is captured once at traversal time.
	Orientation Orientation

	// fault holds a panic raised by the face while reading its orientation.
	fault any
}

// Inverted reports whether the face is reversed relative to its surface.
func (h FaceHandle) Inverted() bool {
	return h.Orientation == Reversed
}

type nuller interface {
	IsNull() bool
}

// Faces returns the faces of shape in kernel order, skipping null entries.
//
// The sequence is lazy: the kernel explorer is created when iteration
// starts and advanced one face at a time. It is restartable: every range
// over the returned sequence starts a fresh explorer. Traversal never
// mutates the shape.
func Faces(k GeometryKernel, shape Shape) iter.Seq[FaceHandle] {
	return func(yield func(FaceHandle) bool) {
		ordinal := 0
		for ex := k.ExploreFaces(shape); ex.More(); ex.Next() {
			f := ex.Current()
			if isNullFace(f) {
				continue
			}
			h := FaceHandle{Face: f, Ordinal: ordinal}
			h.Orientation, h.fault = orientationOf(f)
			ordinal++
			if !yield(h) {
				return
			}
		}
	}
}

// orientationOf reads the orientation of f. A panic is returned as fault
// so that one bad face does not end the traversal.
func orientationOf(f Face) (o Orientation, fault any) {
	defer func() {
		fault = recover()
	}()
	return f.Orientation(), nil
}

// CountFaces returns the number of non-null faces of shape.
func CountFaces(k GeometryKernel, shape Shape) int {
	n := 0
	for range Faces(k, shape) {
		n++
	}
	return n
}

func isNullFace(f Face) bool {
	if f == nil {
		return true
	}
	if n, ok := f.(nuller); ok && n.IsNull() {
		return true
	}
	return false
}

func isNullShape(s Shape) bool {
	return s == nil || s.IsNull()
}
