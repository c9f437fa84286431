package brepio

import (
	"errors"
	"testing"
)

func TestRunRepeatedFaceKeysGetDistinctRefs(t *testing.T) {
	k := &fakeKernel{tri: stripTriangulation(1)}
	s, err := NewSession(k)
	if err != nil {
		t.Fatal(err)
	}
	shape := &fakeShape{faces: []Face{keyedFace{"same"}, keyedFace{"other"}, keyedFace{"same"}}}

	res, err := s.Run(shape, 1, true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Faces) != 3 {
		t.Fatalf("got %d faces, want 3", len(res.Faces))
	}
	seen := make(map[string]int)
	for _, f := range res.Faces {
		if prev, dup := seen[f.Ref]; dup {
			t.Errorf("faces %d and %d share ref %s", prev, f.Ordinal, f.Ref)
		}
		seen[f.Ref] = f.Ordinal
	}

	// The first occurrence keeps its key-derived reference.
	id := s.Identity()
	if want := id.Reference(shape, FaceHandle{Face: keyedFace{"same"}, Ordinal: 0}); res.Faces[0].Ref != want {
		t.Errorf("first ref = %s, want %s", res.Faces[0].Ref, want)
	}
	h := FaceHandle{Face: keyedFace{"same"}, Ordinal: 2}
	if want := id.OrdinalReference(shape, h); res.Faces[2].Ref != want {
		t.Errorf("repeated ref = %s, want %s", res.Faces[2].Ref, want)
	}

	// Refs are reproducible across runs.
	again, err := s.Run(shape, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	for i := range again.Faces {
		if again.Faces[i].Ref != res.Faces[i].Ref {
			t.Errorf("face %d ref changed between runs", i)
		}
	}
}

func TestRunOrientationFaultSkipsFace(t *testing.T) {
	k := &fakeKernel{tri: stripTriangulation(1)}
	s, err := NewSession(k)
	if err != nil {
		t.Fatal(err)
	}
	shape := &fakeShape{faces: []Face{keyedFace{"a"}, panicFace{}, keyedFace{"b"}}}

	res, err := s.Run(shape, 1, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Report.Visited != 3 || len(res.Faces) != 2 {
		t.Fatalf("visited %d, emitted %d; want 3, 2", res.Report.Visited, len(res.Faces))
	}
	if len(res.Report.Failures) != 1 {
		t.Fatalf("Failures = %v, want one", res.Report.Failures)
	}
	fe := res.Report.Failures[0]
	if fe.Ordinal != 1 || fe.Stage != StageOrientation || fe.Ref != "" {
		t.Errorf("FaceError = %+v", fe)
	}
	var fault *FaultError
	if !errors.As(fe, &fault) || fault.Value != "orientation fault" {
		t.Errorf("FaceError does not wrap the orientation fault: %v", fe)
	}
	if res.Faces[1].Ordinal != 2 {
		t.Errorf("last face ordinal = %d, want 2", res.Faces[1].Ordinal)
	}
}
