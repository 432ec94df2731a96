package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Mixer behavior
	Mixer MixerConfig `mapstructure:"mixer"`
}

// MixerConfig holds tunables for the session mirror and the TUI
type MixerConfig struct {
	// PeakPollInterval drives the meter sampling timer, e.g. "50ms"
	PeakPollInterval string `mapstructure:"peak_poll_interval"`

	// ProcPollInterval drives the process-exit watch, e.g. "2s"
	ProcPollInterval string `mapstructure:"proc_poll_interval"`

	// VolumeStep is the per-keypress volume delta in the TUI
	VolumeStep float64 `mapstructure:"volume_step"`

	// DevicePrefsPath overrides where the per-app device mapping is stored
	DevicePrefsPath string `mapstructure:"device_prefs_path"`

	// ShowSystemSounds includes the system-sounds session in listings
	ShowSystemSounds bool `mapstructure:"show_system_sounds"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "table",
		Quiet:   false,
		Verbose: false,
		Mixer: MixerConfig{
			PeakPollInterval: "50ms",
			ProcPollInterval: "2s",
			VolumeStep:       0.05,
			ShowSystemSounds: true,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("deskmix")
	v.SetConfigType("yaml")

	// Config paths, lowest precedence first
	v.AddConfigPath("/etc/deskmix/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "deskmix"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".deskmix")
	}
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("DESKMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "DESKMIX_FORMAT")
	v.BindEnv("quiet", "DESKMIX_QUIET")
	v.BindEnv("verbose", "DESKMIX_VERBOSE")
	v.BindEnv("mixer.volume_step", "DESKMIX_VOLUME_STEP")

	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("mixer.peak_poll_interval", cfg.Mixer.PeakPollInterval)
	v.SetDefault("mixer.proc_poll_interval", cfg.Mixer.ProcPollInterval)
	v.SetDefault("mixer.volume_step", cfg.Mixer.VolumeStep)
	v.SetDefault("mixer.show_system_sounds", cfg.Mixer.ShowSystemSounds)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
