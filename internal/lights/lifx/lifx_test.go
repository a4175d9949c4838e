package lifx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scheerer/sunset/internal/lights"
)

func TestNewLifxColor(t *testing.T) {
	full := Config{Kelvin: 6500, MinBrightness: 0, MaxBrightness: 1}

	tests := []struct {
		name   string
		level  float64
		config Config
		want   uint16
	}{
		{name: "full", level: 100, config: full, want: 0xFFFF},
		{name: "half", level: 50, config: full, want: 0x8000},
		{name: "off", level: 0, config: full, want: 0},
		{name: "above range", level: 140, config: full, want: 0xFFFF},
		{name: "min clamp", level: 0.10673, config: Config{Kelvin: 6500, MinBrightness: 0.2, MaxBrightness: 1}, want: 13107},
		{name: "max clamp", level: 90, config: Config{Kelvin: 6500, MinBrightness: 0, MaxBrightness: 0.65}, want: 42598},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLifxColor(tt.level, tt.config)
			assert.Equal(t, tt.want, c.Brightness)
			assert.Zero(t, c.Saturation)
			assert.Zero(t, c.Hue)
			assert.Equal(t, uint16(6500), c.Kelvin)
		})
	}
}

func TestNewLifxColorKelvinRange(t *testing.T) {
	assert.Equal(t, uint16(minKelvin), newLifxColor(50, Config{Kelvin: 1000, MaxBrightness: 1}).Kelvin)
	assert.Equal(t, uint16(maxKelvin), newLifxColor(50, Config{Kelvin: 20000, MaxBrightness: 1}).Kelvin)
}

func TestSetBrightnessBeforeDiscovery(t *testing.T) {
	l := &LifxLights{config: Config{GroupName: "DESK"}}

	assert.Zero(t, l.LightCount())
	assert.ErrorIs(t, l.SetBrightness(context.Background(), 50), lights.ErrNoLights)
}
