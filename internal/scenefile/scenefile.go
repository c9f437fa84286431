// Package scenefile loads reference-kernel scenes from HCL files.
//
// A scene is a list of primitive blocks, each optionally placed by a
// rotation followed by a translation:
//
//	name = "bracket"
//
//	box "base" {
//	  size      = [40, 20, 4]
//	  translate = [-20, -10, 0]
//	}
//
//	cylinder "post" {
//	  radius       = 3
//	  height       = 25
//	  rotate_axis  = [1, 0, 0]
//	  rotate_angle = pi / 2
//	}
//
//	sphere "knob" {
//	  radius    = 5
//	  translate = [0, 0, 30]
//	}
//
// Expressions may use the variable pi and the functions abs, ceil, floor,
// max, min and pow. Blocks keep their file order, which fixes the face
// traversal order of the resulting shape.
package scenefile

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gogpu/brepio"
	"github.com/gogpu/brepio/kernel/refkernel"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ungerik/go3d/float64/vec3"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Block types.
const (
	KindBox      = "box"
	KindCylinder = "cylinder"
	KindSphere   = "sphere"
)

var sceneSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: KindBox, LabelNames: []string{"name"}},
		{Type: KindCylinder, LabelNames: []string{"name"}},
		{Type: KindSphere, LabelNames: []string{"name"}},
	},
}

type boxBlock struct {
	Size        []float64 `hcl:"size"`
	Translate   []float64 `hcl:"translate,optional"`
	RotateAxis  []float64 `hcl:"rotate_axis,optional"`
	RotateAngle float64   `hcl:"rotate_angle,optional"`
}

type cylinderBlock struct {
	Radius      float64   `hcl:"radius"`
	Height      float64   `hcl:"height"`
	Translate   []float64 `hcl:"translate,optional"`
	RotateAxis  []float64 `hcl:"rotate_axis,optional"`
	RotateAngle float64   `hcl:"rotate_angle,optional"`
}

type sphereBlock struct {
	Radius      float64   `hcl:"radius"`
	Translate   []float64 `hcl:"translate,optional"`
	RotateAxis  []float64 `hcl:"rotate_axis,optional"`
	RotateAngle float64   `hcl:"rotate_angle,optional"`
}

// Part is one primitive of a scene.
type Part struct {
	Kind     string
	Name     string
	Location brepio.Location
	Shape    *refkernel.Shape
}

// Scene is a decoded scene file.
type Scene struct {
	Name  string
	Path  string
	Parts []Part
	// Shape is the compound of all parts, named after the scene.
	Shape *refkernel.Shape
}

// EvalContext returns the expression context of scene files.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
		Functions: map[string]function.Function{
			"abs":   stdlib.AbsoluteFunc,
			"ceil":  stdlib.CeilFunc,
			"floor": stdlib.FloorFunc,
			"max":   stdlib.MaxFunc,
			"min":   stdlib.MinFunc,
			"pow":   stdlib.PowFunc,
		},
	}
}

// Load parses the scene file at path.
func Load(path string) (*Scene, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse scene %s: %w", path, diags)
	}
	return decode(f, path)
}

// Parse parses scene source. filename is used in diagnostics and as the
// default scene name.
func Parse(src []byte, filename string) (*Scene, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse scene %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, path string) (*Scene, error) {
	content, diags := f.Body.Content(sceneSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode scene %s: %w", path, diags)
	}
	ctx := EvalContext()

	sc := &Scene{Name: defaultName(path), Path: path}
	if attr, ok := content.Attributes["name"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, ctx, &sc.Name); diags.HasErrors() {
			return nil, fmt.Errorf("decode scene %s: %w", path, diags)
		}
		if sc.Name == "" {
			return nil, fmt.Errorf("decode scene %s: %w", path, blockError(attr.Range, "scene name must not be empty"))
		}
	}

	seen := make(map[string]hcl.Range)
	for _, b := range content.Blocks {
		name := b.Labels[0]
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("decode scene %s: %w", path,
				blockError(b.DefRange, fmt.Sprintf("duplicate part %q, first defined at %s", name, prev)))
		}
		seen[name] = b.DefRange

		part, diags := decodePart(b, ctx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("decode scene %s: %w", path, diags)
		}
		sc.Parts = append(sc.Parts, part)
	}

	shapes := make([]*refkernel.Shape, len(sc.Parts))
	for i, p := range sc.Parts {
		shapes[i] = p.Shape
	}
	sc.Shape = refkernel.Compound(sc.Name, shapes...)
	return sc, nil
}

func decodePart(b *hcl.Block, ctx *hcl.EvalContext) (Part, hcl.Diagnostics) {
	p := Part{Kind: b.Type, Name: b.Labels[0]}

	var (
		shape  *refkernel.Shape
		t, ax  []float64
		angle  float64
		diags  hcl.Diagnostics
		errMsg string
	)
	switch b.Type {
	case KindBox:
		var blk boxBlock
		if diags = gohcl.DecodeBody(b.Body, ctx, &blk); diags.HasErrors() {
			return p, diags
		}
		switch {
		case len(blk.Size) != 3:
			errMsg = "size must have 3 components"
		case !positive(blk.Size...):
			errMsg = "size components must be positive"
		default:
			shape = refkernel.Box(p.Name, blk.Size[0], blk.Size[1], blk.Size[2])
		}
		t, ax, angle = blk.Translate, blk.RotateAxis, blk.RotateAngle
	case KindCylinder:
		var blk cylinderBlock
		if diags = gohcl.DecodeBody(b.Body, ctx, &blk); diags.HasErrors() {
			return p, diags
		}
		if !positive(blk.Radius, blk.Height) {
			errMsg = "radius and height must be positive"
		} else {
			shape = refkernel.Cylinder(p.Name, blk.Radius, blk.Height)
		}
		t, ax, angle = blk.Translate, blk.RotateAxis, blk.RotateAngle
	case KindSphere:
		var blk sphereBlock
		if diags = gohcl.DecodeBody(b.Body, ctx, &blk); diags.HasErrors() {
			return p, diags
		}
		if !positive(blk.Radius) {
			errMsg = "radius must be positive"
		} else {
			shape = refkernel.Sphere(p.Name, blk.Radius)
		}
		t, ax, angle = blk.Translate, blk.RotateAxis, blk.RotateAngle
	}
	if errMsg != "" {
		return p, hcl.Diagnostics{blockError(b.DefRange, errMsg)}
	}

	loc, msg := placement(t, ax, angle)
	if msg != "" {
		return p, hcl.Diagnostics{blockError(b.DefRange, msg)}
	}
	p.Location = loc
	p.Shape = shape
	if !loc.IsIdentity() {
		p.Shape = refkernel.Transformed(shape, loc)
	}
	return p, nil
}

// placement builds rotate-then-translate locations.
func placement(translate, axis []float64, angle float64) (brepio.Location, string) {
	var rot, tr brepio.Location
	if axis != nil || angle != 0 {
		if len(axis) != 3 {
			return brepio.Location{}, "rotate_axis must have 3 components"
		}
		a := vec3.T{axis[0], axis[1], axis[2]}
		if a.Length() == 0 {
			return brepio.Location{}, "rotate_axis must not be zero"
		}
		rot = brepio.Rotation(a, angle)
	}
	if translate != nil {
		if len(translate) != 3 {
			return brepio.Location{}, "translate must have 3 components"
		}
		tr = brepio.Translation(translate[0], translate[1], translate[2])
	}
	return tr.Multiply(rot), ""
}

func positive(vs ...float64) bool {
	for _, v := range vs {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func blockError(r hcl.Range, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid scene block",
		Detail:   detail,
		Subject:  r.Ptr(),
	}
}

func defaultName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
