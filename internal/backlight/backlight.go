// Package backlight drives the external backlight tool.
package backlight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/scheerer/sunset/internal/brightness"
	"github.com/scheerer/sunset/internal/logging"
)

var logger = logging.New("backlight")

var ErrUnparsableOutput = errors.New("unparsable backlight output")

type Config struct {
	Path string
}

type Light struct {
	path string
}

func New(config Config) *Light {
	path := config.Path
	if path == "" {
		path = "light"
	}
	return &Light{path: path}
}

// Read returns the current backlight percentage.
func (l *Light) Read(ctx context.Context) (float64, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.path)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("run %s: %w%s", l.path, err, stderrSuffix(&stderr))
	}

	raw := strings.TrimSpace(string(out))
	logger.With(zap.String("output", raw)).Debug("Backlight output")

	percent, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableOutput, raw)
	}
	return percent, nil
}

// Set runs the backlight tool to completion with the given percentage.
func (l *Light) Set(ctx context.Context, level float64) error {
	arg := brightness.FormatFloat(level)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.path, "-S", arg)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s -S %s: %w%s", l.path, arg, err, stderrSuffix(&stderr))
	}

	logger.With(zap.String("level", arg)).Debug("Backlight set")
	return nil
}

func stderrSuffix(stderr *bytes.Buffer) string {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}
