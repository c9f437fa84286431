// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package brepio

import (
	"github.com/gogpu/brepio/document"
	"github.com/ungerik/go3d/float64/vec3"
)

// DefaultBatchSize is the number of triangles processed per batch.
const DefaultBatchSize = 1000

// TriangleRecord is one emitted triangle in global coordinates.
type TriangleRecord struct {
	// Index is the triangle's position in the source triangulation.
	Index  int
	Points [3]vec3.T
	// Normals is valid only when HasNormals is true.
	Normals    [3]vec3.T
	HasNormals bool
}

// Tessellation is the extracted mesh of one face.
type Tessellation struct {
	Triangles []TriangleRecord
	// Skipped counts triangles dropped for out-of-range node indices.
	Skipped int
	// Normals is the per-node normal estimation result.
	Normals NormalResult
	// Batches is the number of batches processed.
	Batches int
}

// Degraded reports whether any part of the face fell back to a default.
func (t *Tessellation) Degraded() bool {
	return t.Skipped > 0 || t.Normals.Defaulted > 0 || t.Normals.Err != nil
}

// ExtractTessellation converts a face triangulation into global-frame
// triangle records.
//
// It returns an empty result for a nil triangulation or one without
// triangles or nodes. Nodes are transformed by loc once, normals are
// estimated once per face, and triangles are then emitted in ascending
// index order in sequential batches of batchSize (DefaultBatchSize when
// batchSize <= 0). A triangle referencing a node outside the triangulation
// is skipped on its own.
func ExtractTessellation(ev DerivativeEvaluator, s Surface, tri *Triangulation, loc Location, batchSize int) Tessellation {
	if tri.IsEmpty() {
		return Tessellation{}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	nodes := make([]vec3.T, len(tri.Nodes))
	for i, p := range tri.Nodes {
		nodes[i] = loc.TransformPoint(p)
	}

	out := Tessellation{
		Triangles: make([]TriangleRecord, 0, len(tri.Triangles)),
		Normals:   EstimateNormals(ev, s, tri, loc),
	}
	withNormals := needsNormals(s) && out.Normals.Len() == len(nodes)

	n := len(tri.Triangles)
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		for i := start; i < end; i++ {
			idx := tri.Triangles[i]
			if !validTriangle(idx, len(nodes)) {
				out.Skipped++
				continue
			}
			rec := TriangleRecord{
				Index:  i,
				Points: [3]vec3.T{nodes[idx[0]], nodes[idx[1]], nodes[idx[2]]},
			}
			if withNormals {
				ns := out.Normals.Normals
				rec.Normals = [3]vec3.T{ns[idx[0]].Vec, ns[idx[1]].Vec, ns[idx[2]].Vec}
				rec.HasNormals = true
			}
			out.Triangles = append(out.Triangles, rec)
		}
		out.Batches++
	}
	return out
}

func validTriangle(idx [3]int, nodes int) bool {
	for _, i := range idx {
		if i < 0 || i >= nodes {
			return false
		}
	}
	return true
}

// Document encodes the tessellation as an array of triangle records:
//
//	[ [[x,y,z] x3], ([[nx,ny,nz] x3])? ]
func (t *Tessellation) Document() document.Array {
	out := make(document.Array, 0, len(t.Triangles))
	for i := range t.Triangles {
		out = append(out, t.Triangles[i].Document())
	}
	return out
}

// Document encodes one triangle record.
func (r TriangleRecord) Document() document.Array {
	rec := document.Array{vec3Triple(r.Points)}
	if r.HasNormals {
		rec = append(rec, vec3Triple(r.Normals))
	}
	return rec
}

func vec3Triple(v [3]vec3.T) document.Array {
	return document.Array{vecDoc(v[0]), vecDoc(v[1]), vecDoc(v[2])}
}

func vecDoc(v vec3.T) document.Array {
	return document.Vec3(v[0], v[1], v[2])
}
