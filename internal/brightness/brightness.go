// Package brightness holds the single scalar that drives both the backlight
// and the color-temperature blend.
package brightness

import (
	"math"
	"strconv"
)

const (
	Min  = 10.0
	Max  = 200.0
	Step = 5.0

	// BacklightOffset maps the backlight tool's 0-100 reading onto 100-200.
	BacklightOffset = 100.0

	// MinLightLevel is the backlight percentage used for every value up to
	// the point where the backlight starts rising again.
	MinLightLevel = 0.10673
)

// Brightness is a value in [Min, Max]. Values above 100 raise the backlight,
// values at or below 100 dim the screen through the color-temperature daemon.
type Brightness struct {
	value float64
}

func New(v float64) Brightness {
	var b Brightness
	b.Set(v)
	return b
}

// FromBacklight builds a Brightness from a backlight tool reading.
func FromBacklight(percent float64) Brightness {
	return New(percent + BacklightOffset)
}

func (b Brightness) Value() float64 {
	return b.value
}

// Set clamps v to [Min, Max] and stores it.
func (b *Brightness) Set(v float64) {
	if math.IsNaN(v) {
		v = Min
	}
	b.value = math.Min(Max, math.Max(Min, v))
}

func (b *Brightness) Change(delta float64) {
	b.Set(b.value + delta)
}

// LightLevel is the backlight percentage passed to the backlight tool.
func (b Brightness) LightLevel() float64 {
	if b.value < BacklightOffset+MinLightLevel {
		return MinLightLevel
	}
	return b.value - BacklightOffset
}

// RedshiftFactor is the brightness blend passed to the color-temperature daemon.
func (b Brightness) RedshiftFactor() float64 {
	if b.value > BacklightOffset {
		return 1.0
	}
	return b.value / 100
}

func (b Brightness) String() string {
	return FormatFloat(b.value)
}

// FormatFloat renders v in its shortest decimal form, the way the external
// tools and the HTTP API expect it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
