package brepio

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/gogpu/brepio/document"
	"github.com/ungerik/go3d/float64/vec3"
)

// Meshing parameters fixed by interrogation.
const (
	// DefaultDeflection replaces deflections outside (0, MaxDeflection].
	DefaultDeflection = 15.0
	// MaxDeflection is the largest accepted deflection.
	MaxDeflection = 1000.0
	// AngularDeflection is the default angular tolerance passed to the
	// kernel, in radians.
	AngularDeflection = 0.5
)

// Document keys.
const (
	KeyFaces    = "faces"
	KeySurface  = "surface"
	KeyTess     = "tess"
	KeyInverted = "inverted"
	KeyRef      = "ref"
	KeyPtr      = "ptr"
)

// NormalizeDeflection clamps d into (0, MaxDeflection], replacing
// non-positive, out-of-range and non-finite values with DefaultDeflection.
// The second result reports whether a replacement happened. This is a
// normalization, not an error.
func NormalizeDeflection(d float64) (float64, bool) {
	if !(d > 0) || d > MaxDeflection || math.IsInf(d, 0) {
		return DefaultDeflection, true
	}
	return d, false
}

// meshParams returns the kernel meshing request for deflection d.
// Meshing is never parallel: stable references and reproducible output
// depend on the kernel's sequential triangle and node ordering.
func meshParams(d, angular float64) MeshParams {
	return MeshParams{
		Deflection:        d,
		Relative:          true,
		AngularDeflection: angular,
		Parallel:          false,
	}
}

// debugHandles issues "ptr" values. They identify a face record within the
// process for debugging and are never stable across calls.
var debugHandles atomic.Int64

// Session holds the kernel and configuration for interrogations.
//
// A Session performs no locking around shapes: Clean and Mesh mutate
// triangulation state stored on the shape, so callers must serialize
// interrogations of the same shape. Distinct shapes may be interrogated
// concurrently through one Session.
type Session struct {
	kernel   GeometryKernel
	opts     options
	identity *Identity
	ready    bool
}

// NewSession creates an initialized session over kernel.
func NewSession(kernel GeometryKernel, opts ...Option) (*Session, error) {
	if kernel == nil {
		return nil, fmt.Errorf("%w: nil kernel", ErrInvalidInput)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := o.identity
	if id == nil {
		id = NewIdentity()
	}
	return &Session{kernel: kernel, opts: o, identity: id, ready: true}, nil
}

// Kernel returns the session's kernel.
func (s *Session) Kernel() GeometryKernel { return s.kernel }

// Identity returns the registry assigning stable references.
func (s *Session) Identity() *Identity { return s.identity }

func (s *Session) logger() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return Logger()
}

func (s *Session) check(shape Shape) error {
	if s == nil || !s.ready {
		return ErrNotInitialized
	}
	if isNullShape(shape) {
		return fmt.Errorf("%w: null shape", ErrInvalidInput)
	}
	return nil
}

// FaceStatus is the outcome of processing one face.
type FaceStatus uint8

const (
	// FaceEmitted faces produced a document entry.
	FaceEmitted FaceStatus = iota
	// FaceEmpty faces had no usable triangulation and were omitted.
	FaceEmpty
	// FaceFailed faces hit a fault and were omitted.
	FaceFailed
)

// FaceRecord is the typed form of one emitted face entry.
type FaceRecord struct {
	Ordinal  int
	Ref      string
	Ptr      int64
	Inverted bool
	// Surface is nil when the face has no surface.
	Surface Surface
	// PlaneNormal is the shape-frame plane normal of planar faces.
	PlaneNormal    vec3.T
	HasPlaneNormal bool
	// Tessellation is nil in struct-only mode.
	Tessellation *Tessellation
}

// Report summarizes an interrogation.
type Report struct {
	Deflection float64
	Clamped    bool
	StructOnly bool

	Visited int
	Emitted int
	Empty   int
	// Failures lists faces skipped after a fault, in traversal order.
	Failures []*FaceError

	TrianglesEmitted int
	TrianglesSkipped int
	NormalsDefaulted int
}

// Result is the full output of Run.
type Result struct {
	Document *document.Object
	Faces    []FaceRecord
	Report   Report
}

// Interrogate cleans and re-meshes shape, then returns its mesh document:
//
//	{"faces": [{"surface": ..., "tess": ..., "inverted": ..., "ref": ..., "ptr": ...}, ...]}
//
// deflection is normalized with NormalizeDeflection. In struct-only mode
// the "tess" key is omitted. Faces that fault are logged and skipped; only
// an invalid shape or a meshing failure is returned as an error.
func (s *Session) Interrogate(shape Shape, deflection float64, structOnly bool) (*document.Object, error) {
	res, err := s.Run(shape, deflection, structOnly)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// Run is Interrogate returning typed face records and a report as well.
func (s *Session) Run(shape Shape, deflection float64, structOnly bool) (*Result, error) {
	if err := s.check(shape); err != nil {
		return nil, err
	}
	log := s.logger()

	d, clamped := NormalizeDeflection(deflection)
	if clamped {
		log.Debug("deflection normalized", "requested", deflection, "used", d)
	}
	if err := s.remesh(shape, d); err != nil {
		return nil, err
	}

	res := &Result{Report: Report{Deflection: d, Clamped: clamped, StructOnly: structOnly}}
	faces := document.Array{}
	refs := make(map[string]struct{})

	err := guard("traverse", func() error {
		for h := range Faces(s.kernel, shape) {
			res.Report.Visited++
			rec, obj, status, ferr := s.processFace(shape, h, structOnly, refs)
			switch status {
			case FaceEmpty:
				res.Report.Empty++
			case FaceFailed:
				res.Report.Failures = append(res.Report.Failures, ferr)
				log.Warn("face processing failed",
					"face", h.Ordinal, "ref", ferr.Ref, "stage", ferr.Stage, "error", ferr.Err)
			case FaceEmitted:
				res.Report.Emitted++
				res.Faces = append(res.Faces, rec)
				faces = append(faces, obj)
				if t := rec.Tessellation; t != nil {
					res.Report.TrianglesEmitted += len(t.Triangles)
					res.Report.TrianglesSkipped += t.Skipped
					res.Report.NormalsDefaulted += t.Normals.Defaulted
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Error("face traversal failed", "error", err)
		return nil, fmt.Errorf("brepio: traverse faces: %w", err)
	}

	res.Document = document.NewObject().Set(KeyFaces, faces)
	log.Info("shape interrogated",
		"faces", res.Report.Emitted,
		"empty", res.Report.Empty,
		"failed", len(res.Report.Failures),
		"triangles", res.Report.TrianglesEmitted,
		"deflection", d)
	return res, nil
}

// UpdateTessellation discards and rebuilds the triangulation of shape
// without producing a document. Unlike Interrogate it does not normalize
// deflection: it must be positive and finite.
func (s *Session) UpdateTessellation(shape Shape, deflection float64) error {
	if err := s.check(shape); err != nil {
		return err
	}
	if !(deflection > 0) || math.IsInf(deflection, 0) {
		return fmt.Errorf("%w: deflection %v", ErrInvalidInput, deflection)
	}
	return s.remesh(shape, deflection)
}

func (s *Session) remesh(shape Shape, d float64) error {
	log := s.logger()
	if err := guard("clean", func() error { return s.kernel.CleanTriangulation(shape) }); err != nil {
		log.Error("clean triangulation failed", "error", err)
		return fmt.Errorf("%w: clean: %w", ErrMeshing, err)
	}
	params := meshParams(d, s.opts.angular)
	if err := guard("mesh", func() error { return s.kernel.IncrementalMesh(shape, params) }); err != nil {
		log.Error("meshing failed", "deflection", d, "error", err)
		return fmt.Errorf("%w: %w", ErrMeshing, err)
	}
	return nil
}

// processFace builds the entry of one face inside a fault boundary: any
// panic is converted to a FaceError tagged with the stage in progress.
// refs holds the references already emitted for shape; a repeated one is
// replaced by the face's OrdinalReference.
func (s *Session) processFace(shape Shape, h FaceHandle, structOnly bool, refs map[string]struct{}) (rec FaceRecord, obj *document.Object, status FaceStatus, ferr *FaceError) {
	if h.fault != nil {
		return FaceRecord{}, nil, FaceFailed, &FaceError{
			Ordinal: h.Ordinal,
			Stage:   StageOrientation,
			Err:     &FaultError{Op: string(StageOrientation), Value: h.fault},
		}
	}

	stage := StageTriangulation
	var ref string
	defer func() {
		if r := recover(); r != nil {
			rec, obj, status = FaceRecord{}, nil, FaceFailed
			ferr = &FaceError{Ordinal: h.Ordinal, Ref: ref, Stage: stage, Err: &FaultError{Op: string(stage), Value: r}}
		}
	}()

	tri, loc, ok := s.kernel.GetTriangulation(h.Face)
	if !ok || tri.IsEmpty() {
		return FaceRecord{}, nil, FaceEmpty, nil
	}

	stage = StageIdentity
	ref = s.identity.Reference(shape, h)
	if _, dup := refs[ref]; dup {
		s.logger().Warn("face key repeats an earlier face, qualifying reference with ordinal",
			"face", h.Ordinal)
		ref = s.identity.OrdinalReference(shape, h)
	}

	stage = StageSurface
	surf := s.kernel.GetSurface(h.Face)
	desc := DescribeSurface(surf, loc)

	rec = FaceRecord{Ordinal: h.Ordinal, Ref: ref, Inverted: h.Inverted(), Surface: surf}
	if surf != nil && surf.Kind() == SurfacePlane {
		rec.PlaneNormal, rec.HasPlaneNormal = planeNormal(surf, loc)
	}

	var tess document.Array
	if !structOnly {
		stage = StageTessellation
		t := ExtractTessellation(s.kernel, surf, tri, loc, s.opts.batchSize)
		if t.Skipped > 0 {
			s.logger().Debug("triangles skipped", "face", h.Ordinal, "count", t.Skipped)
		}
		if t.Normals.Defaulted > 0 || t.Normals.Err != nil {
			s.logger().Debug("normals defaulted",
				"face", h.Ordinal, "count", t.Normals.Defaulted, "error", t.Normals.Err)
		}
		rec.Tessellation = &t
		tess = t.Document()
	}

	refs[ref] = struct{}{}
	rec.Ptr = debugHandles.Add(1)

	obj = document.NewObject()
	if desc != nil {
		obj.Set(KeySurface, desc)
	}
	if !structOnly {
		obj.Set(KeyTess, tess)
	}
	obj.Set(KeyInverted, document.Bool(rec.Inverted)).
		Set(KeyRef, document.String(rec.Ref)).
		Set(KeyPtr, document.Int(rec.Ptr))
	return rec, obj, FaceEmitted, nil
}
