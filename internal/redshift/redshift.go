// Package redshift spawns the long-running color-temperature daemon.
package redshift

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/scheerer/sunset/internal/brightness"
	"github.com/scheerer/sunset/internal/logging"
)

var logger = logging.New("redshift")

const (
	DefaultPath        = "redshift"
	DefaultMethod      = "wayland"
	DefaultTemperature = 6500
)

type Config struct {
	Path        string
	Method      string
	Temperature int
}

type Redshift struct {
	config Config
}

func New(config Config) *Redshift {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.Method == "" {
		config.Method = DefaultMethod
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	return &Redshift{config: config}
}

func (r *Redshift) args(factor float64) []string {
	return []string{
		"-m", r.config.Method,
		"-O", strconv.Itoa(r.config.Temperature),
		"-b", brightness.FormatFloat(factor),
	}
}

// Start spawns the daemon with the given brightness blend and returns
// without waiting for it. The daemon outlives the request that started it,
// so it is not tied to a context.
func (r *Redshift) Start(factor float64) (*Process, error) {
	cmd := exec.Command(r.config.Path, r.args(factor)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.config.Path, err)
	}

	p := &Process{
		cmd:    cmd,
		factor: factor,
		done:   make(chan struct{}),
	}
	go p.wait()

	logger.With(zap.Int("pid", cmd.Process.Pid), zap.Float64("factor", factor)).Debug("Started color temperature daemon")
	return p, nil
}

// Process is a handle to one running daemon.
type Process struct {
	cmd    *exec.Cmd
	factor float64

	done    chan struct{}
	mu      sync.Mutex
	waitErr error
}

// wait reaps the child whenever it exits, killed or not.
func (p *Process) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.waitErr = err
	p.mu.Unlock()
	close(p.done)
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *Process) Factor() float64 {
	return p.factor
}

// Done is closed once the daemon has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err is the daemon's exit error once Done is closed.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}

// Kill sends SIGKILL to the daemon. It fails if the daemon already exited.
func (p *Process) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill pid %d: %w", p.Pid(), err)
	}
	return nil
}
