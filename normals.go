// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package brepio

import (
	"errors"
	"fmt"

	"github.com/ungerik/go3d/float64/vec3"
)

// Confusion is the magnitude below which a surface normal is considered
// degenerate.
const Confusion = 1e-7

// DefaultNormal is substituted when a normal cannot be computed.
var DefaultNormal = vec3.T{0, 0, 1}

// NormalSource records how a node normal was obtained.
type NormalSource uint8

const (
	// NormalComputed is a normalized cross product of surface derivatives.
	NormalComputed NormalSource = iota
	// NormalDegenerate is the default after a near-zero cross product.
	NormalDegenerate
	// NormalFault is the default after an evaluation error or panic.
	NormalFault
)

// String returns the source name.
func (s NormalSource) String() string {
	switch s {
	case NormalComputed:
		return "computed"
	case NormalDegenerate:
		return "degenerate"
	case NormalFault:
		return "fault"
	default:
		return fmt.Sprintf("NormalSource(%d)", uint8(s))
	}
}

// NodeNormal is the normal of one triangulation node.
type NodeNormal struct {
	Vec    vec3.T
	Source NormalSource
}

// Degraded reports whether the normal is a default rather than computed.
func (n NodeNormal) Degraded() bool {
	return n.Source != NormalComputed
}

// errNoUVNodes marks a non-planar face whose triangulation lacks
// parametric coordinates.
var errNoUVNodes = errors.New("triangulation has no parametric nodes")

// NormalResult is the per-face output of normal estimation.
type NormalResult struct {
	// Normals is index-aligned with the triangulation nodes, or empty.
	Normals []NodeNormal
	// Defaulted counts normals that are not NormalComputed.
	Defaulted int
	// Err is set when normals were required but could not be produced.
	Err error
}

// Len returns the number of normals.
func (r NormalResult) Len() int { return len(r.Normals) }

// needsNormals reports whether per-vertex normals are emitted for s.
// Planar faces are fully described by their plane normal.
func needsNormals(s Surface) bool {
	return s != nil && s.Kind() != SurfacePlane
}

// EstimateNormals computes outward unit normals for every node of tri.
//
// The result is empty when s is nil or planar. For other surfaces each node
// is evaluated at its parametric coordinate; the cross product of the
// derivatives is normalized and rotated by loc. Degenerate nodes get
// [DefaultNormal] rotated by loc; nodes whose evaluation fails get it
// unrotated. A failing node never affects its neighbors.
func EstimateNormals(ev DerivativeEvaluator, s Surface, tri *Triangulation, loc Location) NormalResult {
	if !needsNormals(s) || tri.NodeCount() == 0 {
		return NormalResult{}
	}
	if !tri.HasUVNodes() {
		return NormalResult{Err: errNoUVNodes}
	}

	res := NormalResult{Normals: make([]NodeNormal, len(tri.Nodes))}
	for i, uv := range tri.UVNodes {
		n := nodeNormal(ev, s, uv, loc)
		if n.Degraded() {
			res.Defaulted++
		}
		res.Normals[i] = n
	}
	return res
}

func nodeNormal(ev DerivativeEvaluator, s Surface, uv UV, loc Location) (n NodeNormal) {
	defer func() {
		if r := recover(); r != nil {
			n = NodeNormal{Vec: DefaultNormal, Source: NormalFault}
		}
	}()

	d, err := ev.EvaluateDerivatives(s, uv[0], uv[1])
	if err != nil {
		return NodeNormal{Vec: DefaultNormal, Source: NormalFault}
	}
	c := vec3.Cross(&d.DU, &d.DV)
	mag := c.Length()
	// Written as !(mag > Confusion) so NaN magnitudes also take the default.
	if !(mag > Confusion) {
		return NodeNormal{Vec: loc.TransformDirection(DefaultNormal), Source: NormalDegenerate}
	}
	c = c.Scaled(1 / mag)
	return NodeNormal{Vec: loc.TransformDirection(c), Source: NormalComputed}
}
