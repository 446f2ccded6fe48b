package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration of the service.
// Passwords are never stored here; they live in the OS keyring.
type Settings struct {
	Source         SourceSettings   `yaml:"source"`
	Server         ServerSettings   `yaml:"server"`
	RefreshMinutes int              `yaml:"refresh_minutes"`
	Language       string           `yaml:"language"`
	Reminder       ReminderSettings `yaml:"reminder"`
	Policy         PolicySettings   `yaml:"policy"`
}

// SourceSettings selects where contact records are read from.
type SourceSettings struct {
	Mode   string `yaml:"mode"`   // SourceModeLocal or SourceModeWeb
	Format string `yaml:"format"` // FormatVCard, FormatJSON, FormatYAML or empty for auto
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
	User   string `yaml:"user"`
}

type ServerSettings struct {
	Port string `yaml:"port"`
}

// ReminderSettings describes the alarm attached to feed events.
type ReminderSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Value     int    `yaml:"value"`
	Unit      string `yaml:"unit"`      // UnitDays, UnitHours, UnitMinutes
	Direction string `yaml:"direction"` // DirBefore, DirAfter
}

// PolicySettings overrides the relationship health thresholds.
// Zero values mean "use the built-in default".
type PolicySettings struct {
	DefaultFrequencyDays int `yaml:"default_frequency_days"`
	BloomingPercent      int `yaml:"blooming_percent"`
	NourishedPercent     int `yaml:"nourished_percent"`
	ThirstyPercent       int `yaml:"thirsty_percent"`
	HighThresholdDays    int `yaml:"high_threshold_days"`
	MediumThresholdDays  int `yaml:"medium_threshold_days"`
	LowThresholdDays     int `yaml:"low_threshold_days"`
	NeglectBufferDays    int `yaml:"neglect_buffer_days"`
	MilestoneWindowDays  int `yaml:"milestone_window_days"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{
			Mode: SourceModeLocal,
		},
		Server: ServerSettings{
			Port: DefaultPort,
		},
		RefreshMinutes: DefaultRefreshMin,
		Language:       DefaultLanguage,
		Reminder: ReminderSettings{
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

// DefaultSettingsPath returns <UserConfigDir>/<AppID>/config.yaml.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, DefaultSettingsDir, SettingsFileName), nil
}

// LoadSettings reads the YAML settings file at path.
// A missing file is not an error: defaults are returned instead.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	log := slog.With(LogKeyComponent, CompSettings, LogKeyPath, path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info(MsgSettingsDefault)
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	settings.applyDefaults()

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	log.Debug(MsgSettingsLoaded, LogKeyMode, settings.Source.Mode, LogKeyPort, settings.Server.Port)
	return settings, nil
}

// applyDefaults fills the fields a partial file left empty.
func (s *Settings) applyDefaults() {
	if s.Source.Mode == "" {
		s.Source.Mode = SourceModeLocal
	}
	if s.Server.Port == "" {
		s.Server.Port = DefaultPort
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Reminder.Value <= 0 {
		s.Reminder.Value = DefaultReminderValue
	}
	if s.Reminder.Unit == "" {
		s.Reminder.Unit = UnitDays
	}
	if s.Reminder.Direction == "" {
		s.Reminder.Direction = DirBefore
	}
}

// Validate reports the first inconsistency found in the settings.
func (s Settings) Validate() error {
	switch s.Source.Mode {
	case SourceModeLocal, SourceModeWeb:
	default:
		return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrModeUnsupport, s.Source.Mode)
	}

	switch s.Source.Format {
	case "", FormatVCard, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrFormatUnsupport, s.Source.Format)
	}

	if err := ValidatePort(s.Server.Port); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}

	if s.RefreshMinutes < 0 {
		return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrRefreshRange)
	}

	switch s.Reminder.Unit {
	case UnitDays, UnitHours, UnitMinutes:
	default:
		return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrReminderUnit, s.Reminder.Unit)
	}
	switch s.Reminder.Direction {
	case DirBefore, DirAfter:
	default:
		return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrReminderDir, s.Reminder.Direction)
	}

	return s.Policy.Validate()
}

// Validate checks the policy overrides. Zero means default and is always valid.
func (p PolicySettings) Validate() error {
	days := []int{
		p.DefaultFrequencyDays, p.HighThresholdDays, p.MediumThresholdDays,
		p.LowThresholdDays, p.NeglectBufferDays, p.MilestoneWindowDays,
	}
	percents := []int{p.BloomingPercent, p.NourishedPercent, p.ThirstyPercent}

	for _, v := range append(days, percents...) {
		if v < 0 {
			return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrPolicyRange)
		}
	}
	for _, v := range days {
		if v > MaxFrequencyDays {
			return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrPolicyLimit)
		}
	}
	for _, v := range percents {
		if v > MaxPolicyPercent {
			return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrPolicyLimit)
		}
	}

	blooming := orDefault(p.BloomingPercent, DefaultBloomingPercent)
	nourished := orDefault(p.NourishedPercent, DefaultNourishedPercent)
	thirsty := orDefault(p.ThirstyPercent, DefaultThirstyPercent)
	if blooming >= nourished || nourished >= thirsty {
		return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrPolicyOrder)
	}
	return nil
}

// ValidatePort checks that port is a number between MinPort and MaxPort.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// Trigger renders the reminder as an ISO 8601 duration ("-P1D", "PT2H").
// It returns an empty string when reminders are disabled.
func (r ReminderSettings) Trigger() string {
	if !r.Enabled {
		return ""
	}

	val := r.Value
	if val <= 0 {
		val = DefaultReminderValue
	}

	sign := ISOPeriodPrefix
	if r.Direction != DirAfter {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, val, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, val, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, ISODay)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
