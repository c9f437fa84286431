// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package refkernel

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/brepio"
	"github.com/ungerik/go3d/float64/vec3"
)

const (
	// maxSegments bounds the grid resolution in each parametric direction.
	maxSegments = 1024
	// defaultAngular is used when a request carries no angular deflection.
	defaultAngular = math.Pi / 4
)

// segments returns the number of grid intervals over an angular span of a
// direction with curvature radius r. Straight directions use one interval.
func segments(span, r, deflection, angular float64) int {
	if r <= 0 || span <= 0 {
		return 1
	}
	step := angular
	if !(step > 0) {
		step = defaultAngular
	}
	// Sagitta of a chord spanning angle a: r*(1-cos(a/2)).
	if deflection > 0 && deflection < r {
		if a := 2 * math.Acos(1-deflection/r); a < step {
			step = a
		}
	}
	n := int(math.Ceil(span/step - 1e-9))
	return max(1, min(n, maxSegments))
}

// meshFace triangulates f in its local frame. The result may be shared
// with other faces and must not be modified.
func (k *Kernel) meshFace(f *Face, p brepio.MeshParams) *brepio.Triangulation {
	defl := p.Deflection
	if p.Relative {
		defl *= f.size
	}
	ru, rv := f.surface.radii()

	var (
		key    string
		create func() *brepio.Triangulation
	)
	if f.dom.disk > 0 {
		n := max(3, segments(2*math.Pi, f.dom.disk, defl, p.AngularDeflection))
		key = fmt.Sprintf("disk|%#v|%v|%d", f.surface, f.dom.disk, n)
		create = func() *brepio.Triangulation { return diskMesh(f.surface, f.dom.disk, n) }
	} else {
		nu := segments(f.dom.umax-f.dom.umin, ru, defl, p.AngularDeflection)
		nv := segments(f.dom.vmax-f.dom.vmin, rv, defl, p.AngularDeflection)
		key = fmt.Sprintf("grid|%#v|%+v|%d|%d", f.surface, f.dom, nu, nv)
		create = func() *brepio.Triangulation { return gridMesh(f.surface, f.dom, nu, nv) }
	}
	if k.meshes == nil {
		return create()
	}
	return k.meshes.GetOrCreate(key, create)
}

// gridMesh samples s on a (nu+1) x (nv+1) grid and splits every cell into
// two triangles.
func gridMesh(s Surface, d domain, nu, nv int) *brepio.Triangulation {
	cols := nu + 1
	tri := &brepio.Triangulation{
		Nodes:     make([]vec3.T, 0, cols*(nv+1)),
		UVNodes:   make([]brepio.UV, 0, cols*(nv+1)),
		Triangles: make([][3]int, 0, 2*nu*nv),
	}
	for j := 0; j <= nv; j++ {
		v := d.vmin + (d.vmax-d.vmin)*float64(j)/float64(nv)
		for i := 0; i <= nu; i++ {
			u := d.umin + (d.umax-d.umin)*float64(i)/float64(nu)
			tri.Nodes = append(tri.Nodes, s.D1(u, v).Point)
			tri.UVNodes = append(tri.UVNodes, brepio.UV{u, v})
		}
	}
	for j := range nv {
		for i := range nu {
			a := j*cols + i
			b, c, e := a+1, a+cols+1, a+cols
			tri.Triangles = append(tri.Triangles, [3]int{a, b, c}, [3]int{a, c, e})
		}
	}
	return tri
}

// diskMesh fans n ring nodes of radius r around the plane origin.
func diskMesh(s Surface, r float64, n int) *brepio.Triangulation {
	tri := &brepio.Triangulation{
		Nodes:     make([]vec3.T, 0, n+1),
		UVNodes:   make([]brepio.UV, 0, n+1),
		Triangles: make([][3]int, 0, n),
	}
	tri.Nodes = append(tri.Nodes, s.D1(0, 0).Point)
	tri.UVNodes = append(tri.UVNodes, brepio.UV{0, 0})
	for k := range n {
		sin, cos := math.Sincos(2 * math.Pi * float64(k) / float64(n))
		u, v := r*cos, r*sin
		tri.Nodes = append(tri.Nodes, s.D1(u, v).Point)
		tri.UVNodes = append(tri.UVNodes, brepio.UV{u, v})
	}
	for k := range n {
		tri.Triangles = append(tri.Triangles, [3]int{0, 1 + k, 1 + (k+1)%n})
	}
	return tri
}

// applyMeshFault post-processes a triangulation according to ff. tri is
// copied before any change.
func applyMeshFault(tri *brepio.Triangulation, ff FaceFault) *brepio.Triangulation {
	switch {
	case ff.NoTriangulation:
		return nil
	case ff.EmptyMesh:
		return &brepio.Triangulation{}
	case !ff.DropUVNodes && len(ff.ExtraTriangles) == 0:
		return tri
	}
	out := &brepio.Triangulation{
		Nodes:     tri.Nodes,
		UVNodes:   tri.UVNodes,
		Triangles: slices.Concat(tri.Triangles, ff.ExtraTriangles),
	}
	if ff.DropUVNodes {
		out.UVNodes = nil
	}
	return out
}
