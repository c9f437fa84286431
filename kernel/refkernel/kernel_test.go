package refkernel

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/gogpu/brepio"
	"github.com/gogpu/brepio/cache"
	"github.com/ungerik/go3d/float64/vec3"
)

func meshed(t *testing.T, s *Shape, deflection float64) {
	t.Helper()
	k := New()
	if err := k.CleanTriangulation(s); err != nil {
		t.Fatalf("CleanTriangulation() error = %v", err)
	}
	err := k.IncrementalMesh(s, brepio.MeshParams{Deflection: deflection, Relative: true, AngularDeflection: 0.5})
	if err != nil {
		t.Fatalf("IncrementalMesh() error = %v", err)
	}
}

func TestRegistered(t *testing.T) {
	if !slices.Contains(brepio.Kernels(), Name) {
		t.Fatalf("Kernels() = %v, want it to contain %q", brepio.Kernels(), Name)
	}
	k, err := brepio.NewKernel(Name)
	if err != nil {
		t.Fatalf("NewKernel() error = %v", err)
	}
	if _, ok := k.(*Kernel); !ok {
		t.Errorf("NewKernel() returned %T, want *Kernel", k)
	}
}

func TestBoxFaces(t *testing.T) {
	b := Box("cube", 2, 3, 4)
	faces := b.Faces()
	if len(faces) != 6 {
		t.Fatalf("len(Faces()) = %d, want 6", len(faces))
	}
	reversed := 0
	for _, f := range faces {
		if f.surface.Kind() != brepio.SurfacePlane {
			t.Errorf("face %s kind = %v, want plane", f.Name(), f.surface.Kind())
		}
		if f.Orientation() == brepio.Reversed {
			reversed++
		}
	}
	if reversed != 3 {
		t.Errorf("reversed faces = %d, want 3", reversed)
	}
	if got := b.Face("top").StableKey(); got != "cube/top" {
		t.Errorf("StableKey() = %q, want cube/top", got)
	}
}

// TestBoxOutwardNormals checks that surface normal times orientation
// points away from the box center.
func TestBoxOutwardNormals(t *testing.T) {
	b := Box("cube", 2, 2, 2)
	center := vec3.T{1, 1, 1}
	for _, f := range b.Faces() {
		p := f.surface.(*PlaneSurface).Plane()
		n := p.Normal
		if f.Orientation() == brepio.Reversed {
			n = n.Scaled(-1)
		}
		mid := f.surface.D1(1, 1).Point
		out := vec3.Sub(&mid, &center)
		if vec3.Dot(&out, &n) <= 0 {
			t.Errorf("face %s normal %v does not point outward", f.Name(), n)
		}
	}
}

func TestMeshPlanarSingleQuad(t *testing.T) {
	b := Box("cube", 10, 10, 10)
	meshed(t, b, 1.0)
	for _, f := range b.Faces() {
		tri := f.Triangulation()
		if tri.NodeCount() != 4 || tri.TriangleCount() != 2 {
			t.Errorf("face %s: nodes=%d triangles=%d, want 4 and 2",
				f.Name(), tri.NodeCount(), tri.TriangleCount())
		}
		if !tri.HasUVNodes() {
			t.Errorf("face %s has no UV nodes", f.Name())
		}
	}
}

func TestMeshNodesOnSurface(t *testing.T) {
	s := Sphere("ball", 3)
	meshed(t, s, 0.01)
	tri := s.Faces()[0].Triangulation()
	for i, p := range tri.Nodes {
		if d := p.Length(); math.Abs(d-3) > 1e-9 {
			t.Fatalf("node %d at distance %v, want 3", i, d)
		}
	}
}

func TestMeshDensityFollowsDeflection(t *testing.T) {
	coarse := Cylinder("c", 5, 10)
	fine := Cylinder("f", 5, 10)
	meshed(t, coarse, 15)
	meshed(t, fine, 0.001)

	nc := coarse.Face("side").Triangulation().TriangleCount()
	nf := fine.Face("side").Triangulation().TriangleCount()
	if nf <= nc {
		t.Errorf("fine mesh has %d triangles, coarse %d; want fine > coarse", nf, nc)
	}
	// Coarse meshing is bounded by the angular deflection alone.
	if want := 2 * int(math.Ceil(2*math.Pi/0.5)); nc != want {
		t.Errorf("coarse side triangles = %d, want %d", nc, want)
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name                        string
		span, r, deflection, angular float64
		want                        int
	}{
		{"straight", 10, 0, 0.1, 0.5, 1},
		{"angular bound", 2 * math.Pi, 1, 5, 0.5, 13},
		{"no angular", math.Pi, 1, 5, 0, 4},
		{"chord bound", math.Pi, 1, 1 - math.Cos(0.05), 0.5, 32},
		{"capped", 2 * math.Pi, 1, 1e-12, 0.5, maxSegments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segments(tt.span, tt.r, tt.deflection, tt.angular); got != tt.want {
				t.Errorf("segments() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIncrementalMeshKeepsExisting(t *testing.T) {
	b := Box("cube", 1, 1, 1)
	meshed(t, b, 1)
	first := b.Face("top").Triangulation()

	k := New()
	if err := k.IncrementalMesh(b, brepio.MeshParams{Deflection: 0.1, Relative: true}); err != nil {
		t.Fatal(err)
	}
	if b.Face("top").Triangulation() != first {
		t.Error("IncrementalMesh replaced an existing triangulation")
	}
	if err := k.CleanTriangulation(b); err != nil {
		t.Fatal(err)
	}
	if b.Face("top").Triangulation() != nil {
		t.Error("CleanTriangulation left a triangulation")
	}
}

func TestMeshFaults(t *testing.T) {
	k := New()
	b := Box("cube", 1, 1, 1)

	boom := errors.New("boom")
	b.SetMeshFault(boom, nil)
	if err := k.IncrementalMesh(b, brepio.MeshParams{Deflection: 1}); !errors.Is(err, boom) {
		t.Errorf("IncrementalMesh() error = %v, want boom", err)
	}

	b.SetMeshFault(nil, "kaboom")
	func() {
		defer func() {
			if recover() == nil {
				t.Error("IncrementalMesh() did not panic")
			}
		}()
		_ = k.IncrementalMesh(b, brepio.MeshParams{Deflection: 1})
	}()

	b.SetMeshFault(nil, nil)
	if err := k.IncrementalMesh(b, brepio.MeshParams{Deflection: 0}); err == nil {
		t.Error("IncrementalMesh() with zero deflection succeeded")
	}
	if b.MeshCalls() != 3 {
		t.Errorf("MeshCalls() = %d, want 3", b.MeshCalls())
	}
}

func TestFaceFaults(t *testing.T) {
	k := New()
	b := Box("cube", 1, 1, 1)
	b.Face("top").SetFault(FaceFault{EmptyMesh: true})
	b.Face("bottom").SetFault(FaceFault{NoTriangulation: true})
	b.Face("left").SetFault(FaceFault{ExtraTriangles: [][3]int{{0, 1, 99}}, DropUVNodes: true})
	meshed(t, b, 1)

	if tri, _, ok := k.GetTriangulation(b.Face("top")); !ok || !tri.IsEmpty() {
		t.Errorf("top: ok=%v empty=%v, want true true", ok, tri.IsEmpty())
	}
	if _, _, ok := k.GetTriangulation(b.Face("bottom")); ok {
		t.Error("bottom: GetTriangulation ok, want no triangulation")
	}
	left := b.Face("left").Triangulation()
	if left.TriangleCount() != 3 || left.HasUVNodes() {
		t.Errorf("left: triangles=%d uv=%v, want 3 false", left.TriangleCount(), left.HasUVNodes())
	}
}

func TestSurfaceFaults(t *testing.T) {
	k := New()
	s := Sphere("ball", 1)
	f := s.Faces()[0]
	boom := errors.New("eval")

	f.SetFault(FaceFault{NoSurface: true})
	if k.GetSurface(f) != nil {
		t.Error("NoSurface: GetSurface() != nil")
	}

	f.SetFault(FaceFault{EvalFault: func(u, v float64) error { return boom }})
	surf := k.GetSurface(f)
	if surf.Kind() != brepio.SurfaceSphere {
		t.Errorf("wrapped Kind() = %v, want sphere", surf.Kind())
	}
	if _, err := k.EvaluateDerivatives(surf, 0, 0); !errors.Is(err, boom) {
		t.Errorf("EvaluateDerivatives() error = %v, want eval", err)
	}

	f.SetFault(FaceFault{SurfacePanic: true})
	func() {
		defer func() {
			if recover() == nil {
				t.Error("SurfacePanic: GetSurface() did not panic")
			}
		}()
		k.GetSurface(f)
	}()
}

func TestWrappedPlaneKeepsParameters(t *testing.T) {
	k := New()
	b := Box("cube", 1, 1, 1)
	top := b.Face("top")
	top.SetFault(FaceFault{EvalFault: func(u, v float64) error { return nil }})

	ps, ok := k.GetSurface(top).(brepio.PlaneSurface)
	if !ok {
		t.Fatal("wrapped plane does not implement brepio.PlaneSurface")
	}
	if ps.Plane().Origin != (vec3.T{0, 0, 1}) {
		t.Errorf("Origin = %v, want (0,0,1)", ps.Plane().Origin)
	}
}

func TestEvaluateForeignSurface(t *testing.T) {
	type foreign struct{ brepio.Surface }
	if _, err := New().EvaluateDerivatives(foreign{}, 0, 0); !errors.Is(err, ErrUnsupportedSurface) {
		t.Errorf("error = %v, want ErrUnsupportedSurface", err)
	}
}

func TestForeignShape(t *testing.T) {
	k := New()
	var null *Shape
	if err := k.CleanTriangulation(null); !errors.Is(err, ErrForeignShape) {
		t.Errorf("CleanTriangulation(nil) error = %v, want ErrForeignShape", err)
	}
	if k.ExploreFaces(null).More() {
		t.Error("ExploreFaces(nil).More() = true")
	}
}

func TestCompoundAndTransformed(t *testing.T) {
	moved := Transformed(Box("a", 1, 1, 1), brepio.Translation(10, 0, 0))
	c := Compound("asm", moved, Sphere("b", 1))

	if n := len(c.Faces()); n != 7 {
		t.Fatalf("compound faces = %d, want 7", n)
	}
	if got := c.Faces()[0].StableKey(); got != "asm/a/bottom" {
		t.Errorf("StableKey() = %q, want asm/a/bottom", got)
	}
	p := c.Faces()[0].Location().TransformPoint(vec3.T{})
	if p != (vec3.T{10, 0, 0}) {
		t.Errorf("face location maps origin to %v, want (10,0,0)", p)
	}
}

func TestInsertNullFace(t *testing.T) {
	b := Box("cube", 1, 1, 1)
	b.InsertNullFace(2)
	b.InsertNullFace(100)

	n := 0
	for ex := New().ExploreFaces(b); ex.More(); ex.Next() {
		n++
	}
	if n != 8 {
		t.Errorf("explorer visited %d entries, want 8", n)
	}
	if len(b.Faces()) != 6 {
		t.Errorf("Faces() = %d, want 6", len(b.Faces()))
	}
}

func TestMeshCacheSharesIdenticalFaces(t *testing.T) {
	k := New()
	c := Compound("pair", Box("a", 1, 1, 1), Box("b", 1, 1, 1))
	if err := k.IncrementalMesh(c, brepio.MeshParams{Deflection: 0.1}); err != nil {
		t.Fatal(err)
	}
	st := k.CacheStats()
	if st.Misses != 6 || st.Hits != 6 {
		t.Errorf("CacheStats() = %+v, want 6 misses and 6 hits", st)
	}
	faces := c.Faces()
	if faces[0].Triangulation() != faces[6].Triangulation() {
		t.Error("identical faces do not share a triangulation")
	}

	var zero Kernel
	d := Box("c", 1, 1, 1)
	if err := zero.IncrementalMesh(d, brepio.MeshParams{Deflection: 0.1}); err != nil {
		t.Fatal(err)
	}
	if zero.CacheStats() != (cache.Stats{}) {
		t.Errorf("zero Kernel CacheStats() = %+v, want zero", zero.CacheStats())
	}
}

func TestMeshFaultDoesNotLeakIntoCache(t *testing.T) {
	k := New()
	faulty := Box("a", 1, 1, 1)
	faulty.Face("left").SetFault(FaceFault{ExtraTriangles: [][3]int{{0, 1, 99}}, DropUVNodes: true})
	if err := k.IncrementalMesh(faulty, brepio.MeshParams{Deflection: 1}); err != nil {
		t.Fatal(err)
	}

	clean := Box("b", 1, 1, 1)
	if err := k.IncrementalMesh(clean, brepio.MeshParams{Deflection: 1}); err != nil {
		t.Fatal(err)
	}
	left := clean.Face("left").Triangulation()
	if left.TriangleCount() != 2 || !left.HasUVNodes() {
		t.Errorf("clean left: triangles=%d uv=%v, want 2 true", left.TriangleCount(), left.HasUVNodes())
	}
	if k.CacheStats().Hits == 0 {
		t.Error("second box did not hit the cache")
	}
}

func TestCompoundRepeatedChildNames(t *testing.T) {
	b := Box("b", 1, 1, 1)
	c := Compound("c", b, Transformed(b, brepio.Translation(5, 0, 0)), Box("b", 2, 2, 2))

	faces := c.Faces()
	if len(faces) != 18 {
		t.Fatalf("compound faces = %d, want 18", len(faces))
	}
	keys := make(map[string]int, len(faces))
	for i, f := range faces {
		if prev, dup := keys[f.StableKey()]; dup {
			t.Errorf("faces %d and %d share key %q", prev, i, f.StableKey())
		}
		keys[f.StableKey()] = i
	}
	for i, want := range map[int]string{0: "c/b/bottom", 6: "c/b#2/bottom", 12: "c/b#3/bottom"} {
		if got := faces[i].StableKey(); got != want {
			t.Errorf("face %d StableKey() = %q, want %q", i, got, want)
		}
	}
}
