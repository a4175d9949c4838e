// Package lights mirrors the screen's backlight level onto room lights.
package lights

import (
	"context"
	"errors"
)

var ErrNoLights = errors.New("no lights discovered")

// Mirror follows the backlight level, given as a 0-100 percentage.
type Mirror interface {
	LightCount() int
	SetBrightness(ctx context.Context, level float64) error
	Close() error
}
