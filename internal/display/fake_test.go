package display

import (
	"context"
	"errors"
	"sync"

	"github.com/scheerer/sunset/internal/brightness"
)

var errTool = errors.New("tool failed")

type fakeBacklight struct {
	mu      sync.Mutex
	percent float64
	readErr error
	setErr  error
	sets    []float64
}

func (f *fakeBacklight) Read(context.Context) (float64, error) {
	return f.percent, f.readErr
}

func (f *fakeBacklight) Set(_ context.Context, level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, level)
	return nil
}

func (f *fakeBacklight) Sets() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.sets...)
}

type fakeDaemon struct {
	pid     int
	factor  float64
	killErr error

	mu    sync.Mutex
	kills int
}

func (d *fakeDaemon) Pid() int {
	return d.pid
}

func (d *fakeDaemon) Kill() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kills++
	return d.killErr
}

func (d *fakeDaemon) Kills() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.kills
}

type fakeColorTemp struct {
	mu       sync.Mutex
	startErr error
	killErr  error
	daemons  []*fakeDaemon
}

func (f *fakeColorTemp) Start(factor float64) (Daemon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	d := &fakeDaemon{pid: 1000 + len(f.daemons), factor: factor, killErr: f.killErr}
	f.daemons = append(f.daemons, d)
	return d, nil
}

func (f *fakeColorTemp) Daemons() []*fakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeDaemon(nil), f.daemons...)
}

func (f *fakeColorTemp) Last() *fakeDaemon {
	d := f.Daemons()
	return d[len(d)-1]
}

type fakeMirror struct {
	mu     sync.Mutex
	err    error
	levels []float64
}

func (m *fakeMirror) LightCount() int {
	return 1
}

func (m *fakeMirror) SetBrightness(_ context.Context, level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.levels = append(m.levels, level)
	return nil
}

func (m *fakeMirror) Close() error {
	return nil
}

type fakeObserver struct {
	initialized []float64
	restarted   []float64
	failed      []Stage
}

func (o *fakeObserver) Initialized(b brightness.Brightness) {
	o.initialized = append(o.initialized, b.Value())
}

func (o *fakeObserver) Restarted(b brightness.Brightness) {
	o.restarted = append(o.restarted, b.Value())
}

func (o *fakeObserver) RestartFailed(stage Stage, _ error) {
	o.failed = append(o.failed, stage)
}
