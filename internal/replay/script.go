package replay

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Event operations
const (
	OpObserve  = "observe"
	OpCreate   = "create"
	OpActivate = "activate"
	OpSelect   = "select"
	OpDeselect = "deselect"
	OpMove     = "move"
	OpDelete   = "delete"
	OpTrack    = "track"
	OpConfig   = "config"
	OpClassify = "classify"
)

// Flow is a scripted flow result for a single submitted point
type Flow struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	OK bool    `json:"ok"`
}

// Shift moves every submitted point
type Shift struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ConfigPatch changes some of the knobs. Nil fields are left as they are.
type ConfigPatch struct {
	WindowSize      *int  `json:"windowSize,omitempty"`
	TrackOnlyActive *bool `json:"trackOnlyActive,omitempty"`
	PauseOnInvalid  *bool `json:"pauseOnInvalid,omitempty"`
	History         *int  `json:"history,omitempty"`
}

// Event is a single user action or tracking step
type Event struct {
	Frame int     `json:"frame"`
	Op    string  `json:"op"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	ID    int     `json:"id,omitempty"`

	// track: either explicit results (aligned with submitted points in ascending id order) or a shift with failed indices
	Results []Flow `json:"results,omitempty"`
	Shift   *Shift `json:"shift,omitempty"`
	Fail    []int  `json:"fail,omitempty"`

	// config
	Config *ConfigPatch `json:"config,omitempty"`

	// classify
	Bit int  `json:"bit,omitempty"`
	On  bool `json:"on,omitempty"`
}

// Script is a recorded interactive session
type Script struct {
	Events []Event `json:"events"`
}

// ReadScript decodes script from r
func ReadScript(r io.Reader) (Script, error) {
	script := Script{}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&script)
	if err != nil {
		return Script{}, errors.Wrap(err, "can't decode script")
	}
	for i, event := range script.Events {
		if err := event.validate(); err != nil {
			return Script{}, errors.Wrapf(err, "event %d", i)
		}
	}
	return script, nil
}

// ReadScriptFile decodes script from file
func ReadScriptFile(path string) (Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return Script{}, errors.Wrapf(err, "can't open script '%s'", path)
	}
	defer file.Close()
	return ReadScript(file)
}

func (event Event) validate() error {
	if event.Frame < 0 {
		return errors.Errorf("negative frame %d", event.Frame)
	}
	switch event.Op {
	case OpObserve, OpCreate, OpActivate, OpSelect, OpDeselect, OpMove, OpDelete, OpClassify:
		return nil
	case OpTrack:
		if event.Results != nil && (event.Shift != nil || event.Fail != nil) {
			return errors.New("track event takes either results or shift/fail")
		}
		return nil
	case OpConfig:
		if event.Config == nil {
			return errors.New("config event without config")
		}
		return nil
	default:
		return errors.Errorf("unknown op '%s'", event.Op)
	}
}
