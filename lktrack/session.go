package lktrack

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Session is the interactive point tracker: it owns the trajectory store, the active point selection and the configuration snapshot.
// Every mutation (tracking pass, user edit, configuration change) runs under one exclusive lock, so records of a frame
// are visible to readers only after the whole pass has finished. Queries share a read lock.
type Session struct {
	id     uuid.UUID
	mu     sync.RWMutex
	store  *Store
	cfg    Config
	active int

	engine  FlowEngine
	refiner Refiner
	logger  zerolog.Logger

	// Frame the flow is computed from and its index
	prev      Frame
	prevIndex int
	// Most recent frame handed over by Track or Observe
	current      Frame
	currentIndex int
	// Largest window size allowed for the current frame size, 0 when unbounded
	windowMax int
}

// SessionOption configures Session
type SessionOption func(*Session)

// WithConfig sets initial configuration snapshot
func WithConfig(cfg Config) SessionOption {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithRefiner sets sub-pixel refiner used for new points
func WithRefiner(refiner Refiner) SessionOption {
	return func(s *Session) {
		if refiner != nil {
			s.refiner = refiner
		}
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSessionID overrides randomly generated session identifier
func WithSessionID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// NewSession creates new instance of Session
func NewSession(engine FlowEngine, options ...SessionOption) (*Session, error) {
	if engine == nil {
		return nil, errors.New("flow engine is required")
	}
	s := &Session{
		id:        uuid.New(),
		store:     NewStore(),
		cfg:       DefaultConfig(),
		active:    NoActivePoint,
		engine:    engine,
		refiner:   IdentityRefiner{},
		logger:    zerolog.Nop(),
		prevIndex: -1,
	}
	for _, option := range options {
		option(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	s.logger = s.logger.With().Str("session", s.id.String()).Logger()
	return s, nil
}

// NewSessionDefault creates Session with default configuration
func NewSessionDefault(engine FlowEngine) (*Session, error) {
	return NewSession(engine)
}

// GetID returns session's identifier
func (s *Session) GetID() uuid.UUID {
	return s.id
}

// Config returns current configuration snapshot
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ActivePoint returns id of the active trajectory or NoActivePoint
func (s *Session) ActivePoint() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// CurrentFrame returns index of the most recent frame handed over by Track or Observe
func (s *Session) CurrentFrame() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// Count returns number of trajectories
func (s *Session) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Count()
}

// WindowBound returns the largest window size allowed for the current frame size.
// Zero means there is no bound yet.
func (s *Session) WindowBound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windowMax
}

// TrackResult describes a tracking pass
type TrackResult struct {
	Frame int
	// Number of points submitted to the flow engine
	Submitted int
	AdvanceResult
}

// Track runs one tracking pass: positions recorded at frameNumber-1 are propagated by the flow engine onto frameNumber.
// The pass is atomic for readers and other mutations; once started it is not cancelled.
func (s *Session) Track(ctx context.Context, frameNumber int, frame Frame) (TrackResult, error) {
	res := TrackResult{Frame: frameNumber}
	if frame == nil {
		return res, errors.New("frame is required")
	}
	if frameNumber < 0 {
		return res, errors.Wrapf(ErrOutOfRange, "frame %d", frameNumber)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	width, height := frame.Size()
	cfg := s.cfg
	windowMax := s.windowMax
	if bound, ok := windowBound(width, height); ok {
		windowMax = bound
		cfg.WindowSize = minInt(cfg.WindowSize, bound)
	}
	// Nothing to compute from yet: use current frame as prior one
	prev := s.prev
	if prev == nil {
		prev = frame
	}

	view := Project(s.store, frameNumber-1, cfg, s.active)
	eligible := Split(view, cfg, s.active)
	res.Submitted = len(eligible)

	next := []Point{}
	ok := []bool{}
	if len(eligible) > 0 {
		var err error
		next, ok, err = s.engine.ComputeFlow(ctx, prev, frame, Positions(eligible), cfg.WindowSize)
		if err != nil {
			return res, errors.Wrapf(err, "can't compute flow for frame %d", frameNumber)
		}
	}
	positions, success, err := Join(view, eligible, next, ok, cfg.FailurePolicy)
	if err != nil {
		return res, errors.Wrapf(err, "can't join flow results for frame %d", frameNumber)
	}
	Clamp(positions, width, height)

	advance, err := Advance(s.store, view, positions, success, frameNumber, cfg, s.active)
	if err != nil {
		return res, errors.Wrapf(err, "can't advance frame %d", frameNumber)
	}
	res.AdvanceResult = advance

	if windowMax != s.windowMax {
		s.logger.Debug().Int("max_window", windowMax).Msg("Window size bound changed")
	}
	s.cfg = cfg
	s.windowMax = windowMax
	s.current = frame
	s.currentIndex = frameNumber
	s.prev = frame
	s.prevIndex = frameNumber

	if advance.SomeInvalid() {
		s.logger.Info().Int("frame", frameNumber).Ints("ids", advance.Invalidated).Msg("Some points are invalid")
		if advance.Pause {
			s.logger.Info().Int("frame", frameNumber).Msg("Pause playback")
		}
	}
	s.logger.Debug().Int("frame", frameNumber).Int("submitted", res.Submitted).Int("updated", len(advance.Updated)).Msg("Tracked frame")
	return res, nil
}

// Observe hands over a frame which is shown without tracking (seeking, paused playback).
// When frames were skipped, the prior frame is refreshed so the next tracking pass does not compute flow against an outdated frame.
func (s *Session) Observe(frameNumber int, frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentIndex = frameNumber
	if frame == nil {
		return
	}
	s.current = frame
	if frameNumber != s.prevIndex {
		s.prev = frame
		s.prevIndex = frameNumber
	}
}

// ApplyConfig replaces the configuration snapshot.
// Switching "track only active" off turns every stored NotTracked record at the current frame back into Valid.
func (s *Session) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.windowMax > 0 && cfg.WindowSize > s.windowMax {
		cfg.WindowSize = s.windowMax
	}
	wasOnlyActive := s.cfg.TrackOnlyActive
	s.cfg = cfg
	if wasOnlyActive && !cfg.TrackOnlyActive {
		reactivated, err := ReactivateNotTracked(s.store, s.currentIndex)
		if err != nil {
			return err
		}
		s.logger.Debug().Int("frame", s.currentIndex).Ints("ids", reactivated).Msg("Reactivated not tracked points")
	}
	return nil
}

// SetClassification switches classification flag i on or off.
// The flags are written into the active trajectory at the current frame right away and on every tracked frame afterwards.
func (s *Session) SetClassification(i int, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.cfg.WithClassification(i, on)
	if err != nil {
		return err
	}
	s.cfg = cfg
	_, err = SyncClassification(s.store, s.currentIndex, s.cfg, s.active)
	return err
}

// ReactivateNotTracked appends a Valid record for every trajectory whose stored status at frame is NotTracked
func ReactivateNotTracked(store *Store, frame int) ([]int, error) {
	reactivated := []int{}
	for id := range store.IDsAt(frame) {
		rec, ok := store.Get(id, frame)
		if !ok || rec.Status != StatusNotTracked {
			continue
		}
		reactivated = append(reactivated, id)
	}
	for _, id := range reactivated {
		rec, _ := store.Get(id, frame)
		if err := store.Append(id, frame, rec.withStatus(StatusValid)); err != nil {
			return reactivated, errors.Wrapf(err, "can't reactivate trajectory %d", id)
		}
	}
	return reactivated, nil
}
