package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/Ardjun6/DeskPilot/internal/jiggler"
	"github.com/Ardjun6/DeskPilot/internal/recorder"
)

// Settings are the process tunables, read from settings.yaml in the config
// dir and overridable via DESKPILOT_* environment variables.
type Settings struct {
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	Recorder RecorderSettings `mapstructure:"recorder"`
	Jiggler  JigglerSettings  `mapstructure:"jiggler"`
}

// RecorderSettings tune capture and compaction.
type RecorderSettings struct {
	CountdownSeconds float64 `mapstructure:"countdown_seconds"`
	GapThresholdMS   int     `mapstructure:"gap_threshold_ms"`
	ChordWindowMS    int     `mapstructure:"chord_window_ms"`
	CaptureMouse     bool    `mapstructure:"capture_mouse"`
	CaptureKeyboard  bool    `mapstructure:"capture_keyboard"`
}

// JigglerSettings tune the background jiggler.
type JigglerSettings struct {
	Pattern         string          `mapstructure:"pattern"`
	IntervalSeconds int             `mapstructure:"interval_seconds"`
	Schedule        ScheduleSettings `mapstructure:"schedule"`
}

// ScheduleSettings describe the optional calendar window.
type ScheduleSettings struct {
	Enabled bool     `mapstructure:"enabled"`
	Start   string   `mapstructure:"start"`
	End     string   `mapstructure:"end"`
	Days    []string `mapstructure:"days"`
}

// LoadSettings reads settings from dir; a missing file yields defaults.
func LoadSettings(dir string) (Settings, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("recorder.countdown_seconds", 3.0)
	v.SetDefault("recorder.gap_threshold_ms", 500)
	v.SetDefault("recorder.chord_window_ms", 50)
	v.SetDefault("recorder.capture_mouse", true)
	v.SetDefault("recorder.capture_keyboard", true)
	v.SetDefault("jiggler.pattern", string(jiggler.PatternSubtle))
	v.SetDefault("jiggler.interval_seconds", 30)
	v.SetDefault("jiggler.schedule.enabled", false)
	v.SetDefault("jiggler.schedule.start", "09:00")
	v.SetDefault("jiggler.schedule.end", "17:00")
	v.SetDefault("jiggler.schedule.days", []string{"mon", "tue", "wed", "thu", "fri"})

	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("DESKPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, errors.Wrap(err, "read settings")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "parse settings")
	}
	return s, nil
}

// RecorderConfig converts settings into the recorder's config.
func (s Settings) RecorderConfig() recorder.Config {
	return recorder.Config{
		Countdown:       time.Duration(s.Recorder.CountdownSeconds * float64(time.Second)),
		GapThreshold:    time.Duration(s.Recorder.GapThresholdMS) * time.Millisecond,
		ChordWindow:     time.Duration(s.Recorder.ChordWindowMS) * time.Millisecond,
		CaptureMouse:    s.Recorder.CaptureMouse,
		CaptureKeyboard: s.Recorder.CaptureKeyboard,
	}
}

// JigglerSchedule converts schedule settings into a jiggler schedule.
// Returns nil when the schedule is disabled.
func (s Settings) JigglerSchedule() (*jiggler.Schedule, error) {
	if !s.Jiggler.Schedule.Enabled {
		return nil, nil
	}
	start, err := jiggler.ParseDayTime(s.Jiggler.Schedule.Start)
	if err != nil {
		return nil, err
	}
	end, err := jiggler.ParseDayTime(s.Jiggler.Schedule.End)
	if err != nil {
		return nil, err
	}
	days, err := parseDays(s.Jiggler.Schedule.Days)
	if err != nil {
		return nil, err
	}
	return &jiggler.Schedule{Start: start, End: end, Days: days}, nil
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

func parseDays(names []string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(names))
	for _, n := range names {
		t := strings.ToLower(strings.TrimSpace(n))
		d, ok := dayNames[t[:min(3, len(t))]]
		if !ok {
			return nil, errors.Newf("unknown weekday %q", n)
		}
		days[d] = true
	}
	return days, nil
}
