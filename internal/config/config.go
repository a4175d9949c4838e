// Package config reads sunset's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
)

const logFileName = "sunset.log"

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:"0.0.0.0:12321"`

	LightPath        string `env:"LIGHT_PATH" envDefault:"light"`
	RedshiftPath     string `env:"REDSHIFT_PATH" envDefault:"redshift"`
	RedshiftMethod   string `env:"REDSHIFT_METHOD" envDefault:"wayland"`
	ColorTemperature int    `env:"COLOR_TEMPERATURE" envDefault:"6500"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"debug"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`

	LifxGroup         string  `env:"LIFX_GROUP"`
	LifxMinBrightness float64 `env:"LIFX_MIN_BRIGHTNESS" envDefault:"0"`
	LifxMaxBrightness float64 `env:"LIFX_MAX_BRIGHTNESS" envDefault:"1"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment, fills derived defaults and validates.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse environment: %w", err)
	}

	if c.LogFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return c, fmt.Errorf("resolve home directory for log file: %w", err)
		}
		c.LogFile = filepath.Join(home, logFileName)
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("LISTEN_ADDR must not be empty"))
	}
	if c.LightPath == "" {
		errs = append(errs, errors.New("LIGHT_PATH must not be empty"))
	}
	if c.RedshiftPath == "" {
		errs = append(errs, errors.New("REDSHIFT_PATH must not be empty"))
	}
	if c.ColorTemperature < 1000 || c.ColorTemperature > 25000 {
		errs = append(errs, fmt.Errorf("COLOR_TEMPERATURE %d out of range [1000, 25000]", c.ColorTemperature))
	}
	if c.LifxMinBrightness < 0 || c.LifxMinBrightness > 1 {
		errs = append(errs, fmt.Errorf("LIFX_MIN_BRIGHTNESS %v out of range [0, 1]", c.LifxMinBrightness))
	}
	if c.LifxMaxBrightness < 0 || c.LifxMaxBrightness > 1 {
		errs = append(errs, fmt.Errorf("LIFX_MAX_BRIGHTNESS %v out of range [0, 1]", c.LifxMaxBrightness))
	}
	if c.LifxMinBrightness > c.LifxMaxBrightness {
		errs = append(errs, errors.New("LIFX_MIN_BRIGHTNESS must not exceed LIFX_MAX_BRIGHTNESS"))
	}
	return errors.Join(errs...)
}
