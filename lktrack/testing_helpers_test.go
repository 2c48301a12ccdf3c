package lktrack

import (
	"context"
	"time"
)

// recordingEngine returns scripted results and remembers what it was asked for
type recordingEngine struct {
	calls  [][]Point
	frames []Frame
	step   func(prior []Point) ([]Point, []bool)
}

func (engine *recordingEngine) ComputeFlow(_ context.Context, prev, _ Frame, prior []Point, _ int) ([]Point, []bool, error) {
	copied := make([]Point, len(prior))
	copy(copied, prior)
	engine.calls = append(engine.calls, copied)
	engine.frames = append(engine.frames, prev)
	if engine.step != nil {
		next, ok := engine.step(prior)
		return next, ok, nil
	}
	ok := make([]bool, len(prior))
	for i := range ok {
		ok[i] = true
	}
	return copied, ok, nil
}

// shiftEngine moves every point by (dx, dy)
func shiftEngine(dx, dy float64) *recordingEngine {
	return &recordingEngine{
		step: func(prior []Point) ([]Point, []bool) {
			next := make([]Point, len(prior))
			ok := make([]bool, len(prior))
			for i := range prior {
				next[i] = NewPoint(prior[i].X+dx, prior[i].Y+dy)
				ok[i] = true
			}
			return next, ok
		},
	}
}

var (
	testFrame = BlankFrame{Width: 640, Height: 480}
	testTime  = time.Date(2024, 3, 15, 13, 7, 42, 0, time.UTC)
)

func mustSession(engine FlowEngine, options ...SessionOption) *Session {
	s, err := NewSession(engine, options...)
	if err != nil {
		panic(err)
	}
	return s
}
