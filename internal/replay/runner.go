package replay

import (
	"context"

	"github.com/LdDl/lktrack-go/lktrack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Summary collects counters of a replayed script
type Summary struct {
	Events      int
	Tracked     int
	Advisories  int
	Invalidated int
	Pauses      int
}

// Runner replays a script against a session
type Runner struct {
	session *lktrack.Session
	engine  *ScriptedEngine
	frame   lktrack.Frame
	logger  zerolog.Logger
}

// NewRunner creates new instance of Runner.
// The session must have been created with the same engine; frame is handed over for every event.
func NewRunner(session *lktrack.Session, engine *ScriptedEngine, frame lktrack.Frame, logger zerolog.Logger) (*Runner, error) {
	if session == nil || engine == nil {
		return nil, errors.New("session and engine are required")
	}
	if frame == nil {
		return nil, errors.New("frame is required")
	}
	return &Runner{
		session: session,
		engine:  engine,
		frame:   frame,
		logger:  logger,
	}, nil
}

// Run replays every event in order.
// Advisory errors (too close, nothing to select, etc.) are logged and counted, any other error stops the replay.
func (runner *Runner) Run(ctx context.Context, script Script) (Summary, error) {
	summary := Summary{}
	for i := range script.Events {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		event := &script.Events[i]
		err := runner.apply(ctx, event, &summary)
		summary.Events++
		if err == nil {
			continue
		}
		if lktrack.IsAdvisory(err) {
			summary.Advisories++
			runner.logger.Warn().Err(err).Int("event", i).Int("frame", event.Frame).Str("op", event.Op).Msg("Advisory")
			continue
		}
		return summary, errors.Wrapf(err, "event %d (%s at frame %d)", i, event.Op, event.Frame)
	}
	return summary, nil
}

func (runner *Runner) apply(ctx context.Context, event *Event, summary *Summary) error {
	if event.Op == OpTrack {
		runner.engine.Prepare(event)
		res, err := runner.session.Track(ctx, event.Frame, runner.frame)
		runner.engine.Prepare(nil)
		if err != nil {
			return err
		}
		summary.Tracked++
		summary.Invalidated += len(res.Invalidated)
		if res.Pause {
			summary.Pauses++
		}
		return nil
	}

	runner.session.Observe(event.Frame, runner.frame)
	switch event.Op {
	case OpObserve:
		return nil
	case OpCreate:
		_, err := runner.session.CreatePoint(lktrack.NewPoint(event.X, event.Y))
		return err
	case OpActivate:
		_, err := runner.session.ActivateNearest(lktrack.NewPoint(event.X, event.Y))
		return err
	case OpSelect:
		return runner.session.Activate(event.ID)
	case OpDeselect:
		runner.session.Deactivate()
		return nil
	case OpMove:
		return runner.session.MoveActive(lktrack.NewPoint(event.X, event.Y))
	case OpDelete:
		return runner.session.DeleteActive()
	case OpClassify:
		return runner.session.SetClassification(event.Bit, event.On)
	case OpConfig:
		return runner.session.ApplyConfig(event.Config.apply(runner.session.Config()))
	default:
		return errors.Errorf("unknown op '%s'", event.Op)
	}
}

func (patch *ConfigPatch) apply(cfg lktrack.Config) lktrack.Config {
	if patch.WindowSize != nil {
		cfg = cfg.WithWindowSize(*patch.WindowSize)
	}
	if patch.TrackOnlyActive != nil {
		cfg = cfg.WithTrackOnlyActive(*patch.TrackOnlyActive)
	}
	if patch.PauseOnInvalid != nil {
		cfg = cfg.WithPauseOnInvalid(*patch.PauseOnInvalid)
	}
	if patch.History != nil {
		cfg = cfg.WithHistory(*patch.History)
	}
	return cfg
}
