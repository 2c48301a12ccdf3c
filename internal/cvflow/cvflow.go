//go:build gocv

// Package cvflow provides OpenCV backed pyramidal Lucas-Kanade flow and sub-pixel refinement for lktrack sessions.
package cvflow

import (
	"context"
	"image"

	"github.com/LdDl/lktrack-go/lktrack"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// DefaultMaxLevel is the number of pyramid levels above the base image
	DefaultMaxLevel = 10
	// DefaultMinEigThreshold filters out points with a weak gradient in their window
	DefaultMinEigThreshold = 0.001
)

// DefaultTermCriteria stops iterations after 20 steps or once the shift is below 0.03 px
func DefaultTermCriteria() gocv.TermCriteria {
	return gocv.NewTermCriteria(gocv.Count|gocv.EPS, 20, 0.03)
}

// Gray is a single channel frame
type Gray struct {
	Mat gocv.Mat
}

// NewGray converts BGR image into Gray. The caller owns the result and must Close it.
func NewGray(bgr gocv.Mat) (*Gray, error) {
	if bgr.Empty() {
		return nil, errors.New("empty image")
	}
	gray := gocv.NewMat()
	if bgr.Channels() == 1 {
		bgr.CopyTo(&gray)
	} else {
		gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	}
	return &Gray{Mat: gray}, nil
}

// Size returns width and height of the frame
func (g *Gray) Size() (int, int) {
	return g.Mat.Cols(), g.Mat.Rows()
}

// Close releases underlying matrix
func (g *Gray) Close() error {
	return g.Mat.Close()
}

func asGray(frame lktrack.Frame) (*Gray, error) {
	gray, ok := frame.(*Gray)
	if !ok || gray == nil {
		return nil, errors.Errorf("unsupported frame type %T", frame)
	}
	if gray.Mat.Empty() {
		return nil, errors.New("empty frame")
	}
	return gray, nil
}

// Engine computes pyramidal Lucas-Kanade optical flow
type Engine struct {
	MaxLevel        int
	Criteria        gocv.TermCriteria
	MinEigThreshold float64
}

// NewEngineDefault creates Engine with default parameters
func NewEngineDefault() *Engine {
	return &Engine{
		MaxLevel:        DefaultMaxLevel,
		Criteria:        DefaultTermCriteria(),
		MinEigThreshold: DefaultMinEigThreshold,
	}
}

// ComputeFlow implements lktrack.FlowEngine. Both frames must be *Gray.
func (engine *Engine) ComputeFlow(ctx context.Context, prev, curr lktrack.Frame, prior []lktrack.Point, window int) ([]lktrack.Point, []bool, error) {
	if len(prior) == 0 {
		return []lktrack.Point{}, []bool{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	prevGray, err := asGray(prev)
	if err != nil {
		return nil, nil, errors.Wrap(err, "prior frame")
	}
	currGray, err := asGray(curr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "current frame")
	}

	prevPts := pointsMat(prior)
	defer prevPts.Close()
	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	flowErr := gocv.NewMat()
	defer flowErr.Close()

	gocv.CalcOpticalFlowPyrLKWithParams(prevGray.Mat, currGray.Mat, prevPts, nextPts, &status, &flowErr,
		image.Pt(window, window), engine.MaxLevel, engine.Criteria, 0, engine.MinEigThreshold)

	if nextPts.Rows() != len(prior) || status.Rows() != len(prior) {
		return nil, nil, errors.Wrapf(lktrack.ErrLengthMismatch, "%d points in, %d points and %d flags out", len(prior), nextPts.Rows(), status.Rows())
	}
	next := make([]lktrack.Point, len(prior))
	ok := make([]bool, len(prior))
	for i := range prior {
		next[i] = lktrack.NewPoint(float64(nextPts.GetFloatAt(i, 0)), float64(nextPts.GetFloatAt(i, 1)))
		ok[i] = status.GetUCharAt(i, 0) == 1
	}
	return next, ok, nil
}

// Refiner moves a point to the sub-pixel corner location in its window
type Refiner struct {
	Criteria gocv.TermCriteria
}

// NewRefinerDefault creates Refiner with default termination criteria
func NewRefinerDefault() *Refiner {
	return &Refiner{
		Criteria: DefaultTermCriteria(),
	}
}

// Refine implements lktrack.Refiner. Unsupported frames leave the point as is.
func (refiner *Refiner) Refine(frame lktrack.Frame, p lktrack.Point, window int) lktrack.Point {
	gray, err := asGray(frame)
	if err != nil {
		return p
	}
	corners := pointsMat([]lktrack.Point{p})
	defer corners.Close()
	gocv.CornerSubPix(gray.Mat, &corners, image.Pt(window, window), image.Pt(-1, -1), refiner.Criteria)
	return lktrack.NewPoint(float64(corners.GetFloatAt(0, 0)), float64(corners.GetFloatAt(0, 1)))
}

// pointsMat packs points into Nx1 two channel float matrix
func pointsMat(points []lktrack.Point) gocv.Mat {
	mat := gocv.NewMatWithSize(len(points), 1, gocv.MatTypeCV32FC2)
	for i, p := range points {
		mat.SetFloatAt(i, 0, float32(p.X))
		mat.SetFloatAt(i, 1, float32(p.Y))
	}
	return mat
}
