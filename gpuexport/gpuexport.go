// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpuexport packs interrogated faces into an interleaved GPU vertex
// buffer.
//
// Every triangle becomes three vertices of position followed by normal,
// both float32x3, so the buffer can be drawn as a non-indexed triangle
// list. Faces keep contiguous vertex ranges tagged with their stable
// reference, which lets a picker map a vertex back to its face entry in
// the mesh document.
package gpuexport

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/brepio"
	"github.com/gogpu/gputypes"
	"github.com/ungerik/go3d/float64/vec3"
)

const (
	// VertexStride is the byte size of one vertex: position and normal.
	VertexStride = 24

	positionOffset = 0
	normalOffset   = 12
)

// Shader locations of the vertex attributes.
const (
	PositionLocation = 0
	NormalLocation   = 1
)

// FaceRange is the vertex range of one face.
type FaceRange struct {
	// Ordinal is the face's traversal ordinal.
	Ordinal int
	// Ref is the face's stable reference.
	Ref string
	// First is the index of the face's first vertex.
	First uint32
	// Count is the number of vertices, three per triangle.
	Count uint32
}

// VertexBuffer is an interleaved position/normal vertex buffer.
type VertexBuffer struct {
	data  []byte
	count uint32
	faces []FaceRange
}

// Layout returns the vertex buffer layout matching Bytes.
func Layout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: positionOffset, ShaderLocation: PositionLocation},
			{Format: gputypes.VertexFormatFloat32x3, Offset: normalOffset, ShaderLocation: NormalLocation},
		},
	}
}

// Primitive returns the primitive state for drawing the buffer.
// Triangles are wound counter-clockwise when seen from outside the solid.
func Primitive() gputypes.PrimitiveState {
	return gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeNone,
	}
}

// Pack builds a vertex buffer from face records. Faces without a
// tessellation, as produced in struct-only mode, are skipped.
//
// Normals come from the tessellation when it carries them. Other faces
// use their plane normal when known and otherwise the geometric normal of
// each triangle. Inverted faces have their winding and normals reversed so
// every triangle faces out of the solid.
func Pack(faces []brepio.FaceRecord) *VertexBuffer {
	return PackInto(faces, nil)
}

// PackInto is Pack reusing staging as the buffer's backing storage when it
// is large enough.
func PackInto(faces []brepio.FaceRecord, staging []byte) *VertexBuffer {
	total := 0
	for i := range faces {
		if t := faces[i].Tessellation; t != nil {
			total += 3 * len(t.Triangles)
		}
	}

	needed := total * VertexStride
	if cap(staging) < needed {
		staging = make([]byte, needed)
	} else {
		staging = staging[:needed]
	}

	vb := &VertexBuffer{data: staging}
	offset := 0
	for i := range faces {
		f := &faces[i]
		if f.Tessellation == nil {
			continue
		}
		r := FaceRange{Ordinal: f.Ordinal, Ref: f.Ref, First: vb.count}
		for _, tr := range f.Tessellation.Triangles {
			pts, nrm := orient(f, tr)
			for k := range 3 {
				writeVertex(vb.data[offset:], pts[k], nrm[k])
				offset += VertexStride
			}
			r.Count += 3
			vb.count += 3
		}
		vb.faces = append(vb.faces, r)
	}
	return vb
}

// orient returns the triangle's points and per-vertex normals with face
// orientation applied.
func orient(f *brepio.FaceRecord, tr brepio.TriangleRecord) (pts, nrm [3]vec3.T) {
	pts = tr.Points
	switch {
	case tr.HasNormals:
		nrm = tr.Normals
	case f.HasPlaneNormal:
		nrm = [3]vec3.T{f.PlaneNormal, f.PlaneNormal, f.PlaneNormal}
	default:
		n := flatNormal(pts)
		nrm = [3]vec3.T{n, n, n}
	}
	if f.Inverted {
		pts[1], pts[2] = pts[2], pts[1]
		nrm[1], nrm[2] = nrm[2], nrm[1]
		for k := range nrm {
			nrm[k] = nrm[k].Scaled(-1)
		}
	}
	return pts, nrm
}

// flatNormal returns the unit normal of triangle p, or the default normal
// when the triangle is degenerate.
func flatNormal(p [3]vec3.T) vec3.T {
	e1 := vec3.Sub(&p[1], &p[0])
	e2 := vec3.Sub(&p[2], &p[0])
	n := vec3.Cross(&e1, &e2)
	l := n.Length()
	if !(l > brepio.Confusion) {
		return brepio.DefaultNormal
	}
	return n.Scaled(1 / l)
}

func writeVertex(buf []byte, p, n vec3.T) {
	putVec(buf[positionOffset:], p)
	putVec(buf[normalOffset:], n)
}

func putVec(buf []byte, v vec3.T) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(v[0])))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(v[1])))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(float32(v[2])))
}

func getVec(buf []byte) [3]float32 {
	return [3]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

// Bytes returns the little-endian vertex data. The slice aliases the
// buffer.
func (vb *VertexBuffer) Bytes() []byte { return vb.data }

// VertexCount returns the number of vertices.
func (vb *VertexBuffer) VertexCount() uint32 { return vb.count }

// Faces returns the per-face vertex ranges in document order.
func (vb *VertexBuffer) Faces() []FaceRange { return vb.faces }

// Vertex decodes vertex i.
func (vb *VertexBuffer) Vertex(i uint32) (position, normal [3]float32) {
	off := int(i) * VertexStride
	b := vb.data[off : off+VertexStride]
	return getVec(b[positionOffset:]), getVec(b[normalOffset:])
}

// FaceAt returns the range containing vertex i, as a picker resolves a
// primitive index back to its face.
func (vb *VertexBuffer) FaceAt(i uint32) (FaceRange, bool) {
	lo, hi := 0, len(vb.faces)
	for lo < hi {
		mid := (lo + hi) / 2
		r := vb.faces[mid]
		switch {
		case i < r.First:
			hi = mid
		case i >= r.First+r.Count:
			lo = mid + 1
		default:
			return r, true
		}
	}
	return FaceRange{}, false
}
