// Package config loads apptcal settings from the .apptcal file, APPTCAL_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settings is the resolved configuration.
type Settings struct {
	Path   string
	Online bool

	ProbeAddress  string
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration

	SyncDelay      time.Duration
	SyncTimeout    time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	LogLevel  string
	LogFormat string
}

// BasePath is where the durable store keeps its files.
func (s *Settings) BasePath() string {
	return s.Path
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.apptcal.db")
	v.SetDefault("online", true)
	v.SetDefault("probe.address", "")
	v.SetDefault("probe.interval", 10*time.Second)
	v.SetDefault("probe.timeout", 2*time.Second)
	v.SetDefault("sync.delay", 500*time.Millisecond)
	v.SetDefault("sync.timeout", 5*time.Second)
	v.SetDefault("sync.max-retries", 5)
	v.SetDefault("sync.backoff.initial", time.Second)
	v.SetDefault("sync.backoff.max", time.Minute)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "CONSOLE")
}

// Load walks the config search path and returns the resolved settings.
func Load() (*Settings, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName(".apptcal") // .yaml is implicit
	v.SetEnvPrefix("APPTCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("APPTCAL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper resolves settings from an already populated viper instance.
func FromViper(v *viper.Viper) (*Settings, error) {
	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	s := &Settings{
		Path:           path,
		Online:         v.GetBool("online"),
		ProbeAddress:   v.GetString("probe.address"),
		ProbeInterval:  v.GetDuration("probe.interval"),
		ProbeTimeout:   v.GetDuration("probe.timeout"),
		SyncDelay:      v.GetDuration("sync.delay"),
		SyncTimeout:    v.GetDuration("sync.timeout"),
		MaxRetries:     v.GetInt("sync.max-retries"),
		BackoffInitial: v.GetDuration("sync.backoff.initial"),
		BackoffMax:     v.GetDuration("sync.backoff.max"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
	}
	if s.MaxRetries < 1 {
		return nil, fmt.Errorf("config: sync.max-retries must be positive, got %d", s.MaxRetries)
	}
	return s, nil
}
