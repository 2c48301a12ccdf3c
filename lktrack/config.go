package lktrack

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// MaxHistory is the maximum number of past frames shown as a trail
	MaxHistory = 150
	// MinWindowSize is the smallest flow search window
	MinWindowSize = 10
	// DefaultWindowSize is the initial flow search window
	DefaultWindowSize = 31
	// DefaultClassificationBits is the number of user classification flags shown by default
	DefaultClassificationBits = 3
	// DefaultMinPointDistance is the minimal distance (in pixels) between a new point and the existing ones
	DefaultMinPointDistance = 5.0
)

// FailurePolicy decides which position is stored when the flow engine fails to track a point
type FailurePolicy uint8

const (
	// FreezeLastGood keeps the last successfully tracked position of a failed point
	FreezeLastGood FailurePolicy = iota
	// KeepEngineOutput stores whatever position the flow engine reported for a failed point
	KeepEngineOutput
)

func (p FailurePolicy) String() string {
	switch p {
	case FreezeLastGood:
		return "freeze"
	case KeepEngineOutput:
		return "engine"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy parses policy name as returned by FailurePolicy.String
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "freeze":
		return FreezeLastGood, nil
	case "engine":
		return KeepEngineOutput, nil
	default:
		return FreezeLastGood, errors.Wrapf(ErrInvalidConfig, "unknown failure policy '%s'", s)
	}
}

// Config is an immutable snapshot of the user facing knobs.
// Handlers produce new snapshots via With* methods instead of mutating shared fields.
type Config struct {
	// Flow search window (pixels, square)
	WindowSize int
	// Number of user classification flags in use
	ClassificationBits int
	// Target state of the user classification flags; written into the active trajectory on every frame
	Classification Classification
	// Track only the active point, every other valid point is reported as not tracked
	TrackOnlyActive bool
	// Ask for playback pause whenever a point becomes invalid
	PauseOnInvalid bool
	// Number of past frames shown as a trail
	History int
	// Minimal distance between a new point and existing ones
	MinPointDistance float64
	// What to store for points the flow engine failed on
	FailurePolicy FailurePolicy
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		WindowSize:         DefaultWindowSize,
		ClassificationBits: DefaultClassificationBits,
		TrackOnlyActive:    false,
		PauseOnInvalid:     false,
		History:            0,
		MinPointDistance:   DefaultMinPointDistance,
		FailurePolicy:      FreezeLastGood,
	}
}

// Validate checks configuration bounds
func (cfg Config) Validate() error {
	if cfg.WindowSize < MinWindowSize {
		return errors.Wrapf(ErrInvalidConfig, "window size must be at least %d, got %d", MinWindowSize, cfg.WindowSize)
	}
	if cfg.ClassificationBits < 0 || cfg.ClassificationBits > ClassificationBits {
		return errors.Wrapf(ErrInvalidConfig, "classification bits must be in [0, %d], got %d", ClassificationBits, cfg.ClassificationBits)
	}
	if cfg.History < 0 || cfg.History > MaxHistory {
		return errors.Wrapf(ErrInvalidConfig, "history must be in [0, %d], got %d", MaxHistory, cfg.History)
	}
	if cfg.MinPointDistance < 0 {
		return errors.Wrapf(ErrInvalidConfig, "min point distance must not be negative, got %f", cfg.MinPointDistance)
	}
	if cfg.FailurePolicy > KeepEngineOutput {
		return errors.Wrapf(ErrInvalidConfig, "failure policy %d", cfg.FailurePolicy)
	}
	return nil
}

func (cfg Config) String() string {
	return fmt.Sprintf("Config{win=%d bits=%d class=%b only_active=%t pause=%t history=%d min_dist=%.1f policy=%s}",
		cfg.WindowSize, cfg.ClassificationBits, uint64(cfg.Classification), cfg.TrackOnlyActive,
		cfg.PauseOnInvalid, cfg.History, cfg.MinPointDistance, cfg.FailurePolicy)
}

// WithWindowSize returns copy of the snapshot with new window size
func (cfg Config) WithWindowSize(size int) Config {
	cfg.WindowSize = size
	return cfg
}

// WithTrackOnlyActive returns copy of the snapshot with new "track only active" mode
func (cfg Config) WithTrackOnlyActive(on bool) Config {
	cfg.TrackOnlyActive = on
	return cfg
}

// WithPauseOnInvalid returns copy of the snapshot with new "pause on invalid" mode
func (cfg Config) WithPauseOnInvalid(on bool) Config {
	cfg.PauseOnInvalid = on
	return cfg
}

// WithHistory returns copy of the snapshot with new trail depth
func (cfg Config) WithHistory(depth int) Config {
	cfg.History = depth
	return cfg
}

// WithClassification returns copy of the snapshot with classification flag i switched on or off
func (cfg Config) WithClassification(i int, on bool) (Config, error) {
	if i < 0 || i >= cfg.ClassificationBits {
		return cfg, errors.Wrapf(ErrOutOfRange, "classification bit %d (in use %d)", i, cfg.ClassificationBits)
	}
	var err error
	if on {
		cfg.Classification, err = cfg.Classification.Set(i)
	} else {
		cfg.Classification, err = cfg.Classification.Clear(i)
	}
	return cfg, err
}

// windowBound returns the largest window size allowed for a frame of given size.
// The bound only applies when it is above MinWindowSize.
func windowBound(width, height int) (int, bool) {
	bound := minInt(width, height) / 10
	return bound, bound > MinWindowSize
}
