package lktrack

import "context"

// Frame is a single grayscale video frame. The core only needs its size, the pixels are consumed by
// FlowEngine and Refiner implementations.
type Frame interface {
	Size() (width, height int)
}

// FlowEngine is the pyramidal optical flow primitive.
// For every prior position it returns the new position and whether tracking succeeded.
// Outputs have the same length as prior; empty prior gives empty outputs.
type FlowEngine interface {
	ComputeFlow(ctx context.Context, prev, curr Frame, prior []Point, window int) (next []Point, ok []bool, err error)
}

// Refiner refines a user placed position against the current frame (sub-pixel corner refinement)
type Refiner interface {
	Refine(frame Frame, p Point, window int) Point
}

// FlowEngineFunc is an adapter to allow the use of ordinary functions as FlowEngine
type FlowEngineFunc func(ctx context.Context, prev, curr Frame, prior []Point, window int) ([]Point, []bool, error)

// ComputeFlow calls f(ctx, prev, curr, prior, window)
func (f FlowEngineFunc) ComputeFlow(ctx context.Context, prev, curr Frame, prior []Point, window int) ([]Point, []bool, error) {
	return f(ctx, prev, curr, prior, window)
}

// IdentityRefiner leaves positions untouched
type IdentityRefiner struct{}

// Refine returns p
func (IdentityRefiner) Refine(_ Frame, p Point, _ int) Point {
	return p
}

// BlankFrame is a frame without pixels. Useful for replaying recorded flow results and in tests.
type BlankFrame struct {
	Width  int
	Height int
}

// Size returns frame's size
func (f BlankFrame) Size() (int, int) {
	return f.Width, f.Height
}
