// Package display owns the brightness value and keeps the backlight tool and
// the color-temperature daemon in step with it.
package display

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/scheerer/sunset/internal/brightness"
	"github.com/scheerer/sunset/internal/lights"
	"github.com/scheerer/sunset/internal/logging"
)

var logger = logging.New("display")

// Backlight reads and sets the physical backlight percentage.
type Backlight interface {
	Read(ctx context.Context) (float64, error)
	Set(ctx context.Context, level float64) error
}

// ColorTemperature spawns a color-temperature daemon with a brightness blend.
type ColorTemperature interface {
	Start(factor float64) (Daemon, error)
}

// ColorTemperatureFunc adapts a spawn function to ColorTemperature.
type ColorTemperatureFunc func(factor float64) (Daemon, error)

func (f ColorTemperatureFunc) Start(factor float64) (Daemon, error) {
	return f(factor)
}

// Daemon is a handle to a running color-temperature daemon.
type Daemon interface {
	Pid() int
	Kill() error
}

// Observer is notified of every state transition.
type Observer interface {
	Initialized(b brightness.Brightness)
	Restarted(b brightness.Brightness)
	RestartFailed(stage Stage, err error)
}

type Stage string

const (
	StageBacklight Stage = "backlight"
	StageRedshift  Stage = "redshift"
)

// RestartError reports which external tool failed during a restart.
type RestartError struct {
	Stage Stage
	Err   error
}

func (e *RestartError) Error() string {
	return fmt.Sprintf("restart failed at %s: %v", e.Stage, e.Err)
}

func (e *RestartError) Unwrap() error {
	return e.Err
}

type Option func(*State)

// WithMirrors forwards the light level to each mirror after every restart.
func WithMirrors(mirrors ...lights.Mirror) Option {
	return func(s *State) {
		s.mirrors = append(s.mirrors, mirrors...)
	}
}

func WithObserver(o Observer) Option {
	return func(s *State) {
		s.observer = o
	}
}

// State is the brightness value plus the daemon currently applying it.
// One mutex guards both, and every mutation holds it through the whole
// restart so concurrent changes apply one after another.
type State struct {
	backlight Backlight
	colorTemp ColorTemperature
	mirrors   []lights.Mirror
	observer  Observer

	mu         sync.Mutex
	brightness brightness.Brightness
	daemon     Daemon
}

// NewState reads the current backlight, spawns the daemon and returns the
// state. Both failures are meant to be fatal to the caller.
func NewState(ctx context.Context, backlight Backlight, colorTemp ColorTemperature, opts ...Option) (*State, error) {
	s := &State{
		backlight: backlight,
		colorTemp: colorTemp,
	}
	for _, opt := range opts {
		opt(s)
	}

	percent, err := backlight.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read initial brightness: %w", err)
	}
	s.brightness = brightness.FromBacklight(percent)

	daemon, err := colorTemp.Start(s.brightness.RedshiftFactor())
	if err != nil {
		return nil, fmt.Errorf("launch color temperature daemon: %w", err)
	}
	s.daemon = daemon

	logger.With(zap.Float64("backlight", percent), zap.Stringer("brightness", s.brightness), zap.Int("pid", daemon.Pid())).
		Info("Initial brightness value")

	if s.observer != nil {
		s.observer.Initialized(s.brightness)
	}
	return s, nil
}

func (s *State) Get() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness.Value()
}

// Brightness returns a copy of the current value.
func (s *State) Brightness() brightness.Brightness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

// Set clamps and stores v, then restarts the external tools.
func (s *State) Set(ctx context.Context, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.brightness.Set(v)
	return s.restart(ctx)
}

// Change adds delta to the value, then restarts the external tools.
func (s *State) Change(ctx context.Context, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.brightness.Change(delta)
	return s.restart(ctx)
}

func (s *State) Brighter(ctx context.Context) error {
	return s.Change(ctx, brightness.Step)
}

func (s *State) Darker(ctx context.Context) error {
	return s.Change(ctx, -brightness.Step)
}

// Restart reapplies the current value without changing it.
func (s *State) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restart(ctx)
}

// restart kills the current daemon, runs the backlight tool to completion
// and spawns a replacement daemon. Callers hold s.mu.
func (s *State) restart(ctx context.Context) error {
	// once started, a restart runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	b := s.brightness
	log := logger.With(zap.Stringer("brightness", b))

	s.killDaemon()

	level := b.LightLevel()
	if err := s.backlight.Set(ctx, level); err != nil {
		return s.failed(StageBacklight, err)
	}

	factor := b.RedshiftFactor()
	daemon, err := s.colorTemp.Start(factor)
	if err != nil {
		return s.failed(StageRedshift, err)
	}
	s.daemon = daemon

	log.With(zap.Float64("lightLevel", level), zap.Float64("redshiftFactor", factor), zap.Int("pid", daemon.Pid())).
		Info("Brightness applied")

	if s.observer != nil {
		s.observer.Restarted(b)
	}
	s.mirror(ctx, level)
	return nil
}

func (s *State) failed(stage Stage, err error) error {
	rerr := &RestartError{Stage: stage, Err: err}
	logger.With(zap.Error(rerr)).Error("Restart failed")
	if s.observer != nil {
		s.observer.RestartFailed(stage, err)
	}
	return rerr
}

// killDaemon is best effort: a failed kill is logged and the handle dropped.
func (s *State) killDaemon() {
	if s.daemon == nil {
		return
	}
	if err := s.daemon.Kill(); err != nil {
		logger.With(zap.Int("pid", s.daemon.Pid()), zap.Error(err)).Warn("Could not kill color temperature daemon")
	}
	s.daemon = nil
}

func (s *State) mirror(ctx context.Context, level float64) {
	for _, m := range s.mirrors {
		if err := m.SetBrightness(ctx, level); err != nil {
			if errors.Is(err, lights.ErrNoLights) {
				logger.Debug("No mirror lights discovered yet")
				continue
			}
			logger.With(zap.Error(err)).Warn("Failed to mirror brightness")
		}
	}
}

// Close kills the running daemon. The state must not be used afterwards.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killDaemon()
}
