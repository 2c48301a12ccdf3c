package config

import (
	"strings"

	"github.com/LdDl/lktrack-go/lktrack"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings holds everything the replay tool needs
type Settings struct {
	LogLevel  string `mapstructure:"logLevel"`
	LogFormat string `mapstructure:"logFormat"`

	ExportDir  string `mapstructure:"exportDir"`
	SQLitePath string `mapstructure:"sqlitePath"`

	FrameWidth  int `mapstructure:"frameWidth"`
	FrameHeight int `mapstructure:"frameHeight"`

	Tracker lktrack.Config `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")
	v.SetDefault("exportDir", ".")
	v.SetDefault("sqlitePath", "")
	v.SetDefault("frameWidth", 640)
	v.SetDefault("frameHeight", 480)

	defaults := lktrack.DefaultConfig()
	v.SetDefault("tracker.windowSize", defaults.WindowSize)
	v.SetDefault("tracker.classificationBits", defaults.ClassificationBits)
	v.SetDefault("tracker.trackOnlyActive", defaults.TrackOnlyActive)
	v.SetDefault("tracker.pauseOnInvalid", defaults.PauseOnInvalid)
	v.SetDefault("tracker.history", defaults.History)
	v.SetDefault("tracker.minPointDistance", defaults.MinPointDistance)
	v.SetDefault("tracker.failurePolicy", defaults.FailurePolicy.String())
}

// Load reads configuration file (JSON, YAML or TOML, chosen by extension) and LKTRACK_* environment variables on top of defaults.
// Empty path means defaults and environment only.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("LKTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return Settings{}, errors.Wrapf(err, "error reading config file '%s'", path)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Settings, error) {
	settings := Settings{}
	err := v.Unmarshal(&settings)
	if err != nil {
		return Settings{}, errors.Wrap(err, "can't decode settings")
	}
	policy, err := lktrack.ParseFailurePolicy(v.GetString("tracker.failurePolicy"))
	if err != nil {
		return Settings{}, err
	}
	settings.Tracker = lktrack.Config{
		WindowSize:         v.GetInt("tracker.windowSize"),
		ClassificationBits: v.GetInt("tracker.classificationBits"),
		TrackOnlyActive:    v.GetBool("tracker.trackOnlyActive"),
		PauseOnInvalid:     v.GetBool("tracker.pauseOnInvalid"),
		History:            v.GetInt("tracker.history"),
		MinPointDistance:   v.GetFloat64("tracker.minPointDistance"),
		FailurePolicy:      policy,
	}
	if err := settings.Tracker.Validate(); err != nil {
		return Settings{}, err
	}
	if settings.FrameWidth <= 0 || settings.FrameHeight <= 0 {
		return Settings{}, errors.Wrapf(lktrack.ErrInvalidConfig, "frame size must be positive, got %dx%d", settings.FrameWidth, settings.FrameHeight)
	}
	return settings, nil
}
