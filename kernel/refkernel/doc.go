// Package refkernel is a small in-memory geometry kernel of analytic
// primitives implementing brepio.GeometryKernel.
//
// It exists so the interrogation pipeline can run without an external CAD
// kernel: the CLI builds scenes from it and the brepio tests use it as a
// deterministic fixture. Faces carry exact surfaces (plane, cylinder,
// sphere) and are meshed on uniform parametric grids whose density follows
// the requested linear and angular deflection.
//
// Importing the package registers it with brepio under the name
// "reference".
//
// Faults can be injected per face with [Face.SetFault] and per shape with
// [Shape.SetMeshFault] to exercise brepio's fault isolation.
package refkernel
