package lktrack

import (
	"testing"

	"github.com/pkg/errors"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg   Config
		valid bool
	}{
		{cfg: DefaultConfig(), valid: true},
		{cfg: DefaultConfig().WithWindowSize(MinWindowSize), valid: true},
		{cfg: DefaultConfig().WithWindowSize(MinWindowSize - 1), valid: false},
		{cfg: DefaultConfig().WithWindowSize(0), valid: false},
		{cfg: DefaultConfig().WithHistory(MaxHistory), valid: true},
		{cfg: DefaultConfig().WithHistory(MaxHistory + 1), valid: false},
		{cfg: DefaultConfig().WithHistory(-1), valid: false},
	}
	for i, test := range tests {
		err := test.cfg.Validate()
		if test.valid && err != nil {
			t.Errorf("Case %d. Unexpected error: %v", i, err)
		}
		if !test.valid && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Case %d. Expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
