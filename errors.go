package brepio

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for a nil or null shape and for unusable
	// arguments of operations that do not normalize them.
	ErrInvalidInput = errors.New("brepio: invalid input")

	// ErrMeshing wraps kernel failures while cleaning or meshing a shape.
	// No triangulation exists to export when it is returned.
	ErrMeshing = errors.New("brepio: meshing failed")

	// ErrNotInitialized is returned by a Session not created with NewSession.
	ErrNotInitialized = errors.New("brepio: session not initialized")
)

// Stage names a step of per-face processing.
type Stage string

// Stages in processing order.
const (
	StageOrientation   Stage = "orientation"
	StageTriangulation Stage = "triangulation"
	StageIdentity      Stage = "identity"
	StageSurface       Stage = "surface"
	StageTessellation  Stage = "tessellation"
)

// FaceError records a fault that caused one face to be skipped.
type FaceError struct {
	Ordinal int
	// Ref is the face reference, empty when the fault happened before it
	// was assigned.
	Ref   string
	Stage Stage
	Err   error
}

func (e *FaceError) Error() string {
	return fmt.Sprintf("brepio: face %d: %s: %v", e.Ordinal, e.Stage, e.Err)
}

func (e *FaceError) Unwrap() error { return e.Err }

// FaultError is a kernel panic recovered at a fault boundary.
type FaultError struct {
	Op    string
	Value any
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("brepio: %s: kernel fault: %v", e.Op, e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *FaultError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// guard runs fn and converts a panic into a *FaultError.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FaultError{Op: op, Value: r}
		}
	}()
	return fn()
}
