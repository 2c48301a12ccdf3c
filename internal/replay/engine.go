package replay

import (
	"context"

	"github.com/LdDl/lktrack-go/lktrack"
	"github.com/pkg/errors"
)

// ScriptedEngine is a FlowEngine replaying recorded flow results instead of computing them
type ScriptedEngine struct {
	step *Event
}

// NewScriptedEngine creates new instance of ScriptedEngine
func NewScriptedEngine() *ScriptedEngine {
	return &ScriptedEngine{}
}

// Prepare sets the track event the next ComputeFlow call answers with
func (engine *ScriptedEngine) Prepare(event *Event) {
	engine.step = event
}

// ComputeFlow returns scripted results. Without a prepared event every point stays where it is.
func (engine *ScriptedEngine) ComputeFlow(_ context.Context, _, _ lktrack.Frame, prior []lktrack.Point, _ int) ([]lktrack.Point, []bool, error) {
	step := engine.step
	engine.step = nil

	next := make([]lktrack.Point, len(prior))
	ok := make([]bool, len(prior))
	copy(next, prior)
	for i := range ok {
		ok[i] = true
	}
	if step == nil {
		return next, ok, nil
	}
	if step.Results != nil {
		if len(step.Results) != len(prior) {
			return nil, nil, errors.Wrapf(lktrack.ErrLengthMismatch, "frame %d: script has %d results for %d points", step.Frame, len(step.Results), len(prior))
		}
		for i, res := range step.Results {
			next[i] = lktrack.NewPoint(res.X, res.Y)
			ok[i] = res.OK
		}
		return next, ok, nil
	}
	if step.Shift != nil {
		for i := range next {
			next[i].X += step.Shift.DX
			next[i].Y += step.Shift.DY
		}
	}
	for _, idx := range step.Fail {
		if idx < 0 || idx >= len(ok) {
			return nil, nil, errors.Wrapf(lktrack.ErrOutOfRange, "frame %d: failed index %d for %d points", step.Frame, idx, len(prior))
		}
		ok[idx] = false
	}
	return next, ok, nil
}
