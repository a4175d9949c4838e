package lifx

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/zap"

	"github.com/scheerer/sunset/internal/lights"
	"github.com/scheerer/sunset/internal/logging"
)

var logger = logging.New("lifx")

const (
	minKelvin = 2500
	maxKelvin = 9000

	transition = 300 * time.Millisecond
)

type LifxLights struct {
	config Config
	client *golifx.Client

	lightsMu sync.RWMutex
	group    common.Group
}

var _ lights.Mirror = (*LifxLights)(nil)

type Config struct {
	GroupName     string
	Kelvin        int
	MaxBrightness float64
	MinBrightness float64
}

func NewLifx(ctx context.Context, config Config) (*LifxLights, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, err
	}

	l := &LifxLights{
		config: config,
		client: client,
	}
	go l.Start(ctx)
	return l, nil
}

func (l *LifxLights) Start(ctx context.Context) {
	discoveryInterval := 15 * time.Second
	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()

	l.client.SetDiscoveryInterval(discoveryInterval)

	timeout := 5 * time.Second
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	l.discover(ctxWithTimeout)
	cancel()

	for {
		select {
		case <-ticker.C:
			ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
			l.discover(ctxWithTimeout)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

func (l *LifxLights) discover(ctx context.Context) {
	logger.With(zap.String("group", l.config.GroupName)).Debug("LIFX discovery starting...")

	type result struct {
		group common.Group
		err   error
	}
	completed := make(chan result, 1)

	go func() {
		g, err := l.client.GetGroupByLabel(l.config.GroupName)
		if err != nil {
			logger.With(zap.Error(err)).Warn("Failed to get LIFX group by label")
		}
		completed <- result{group: g, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.With(zap.Error(ctx.Err())).Warn("LIFX discovery timed out.")
	case r := <-completed:
		if r.group != nil {
			logger.With(zap.String("group", r.group.GetLabel())).Debug("LIFX group found")
			l.lightsMu.Lock()
			l.group = r.group
			l.lightsMu.Unlock()
		} else {
			logger.With(zap.Error(r.err)).Warn("Couldn't discover group.")
		}
	}
}

func (l *LifxLights) LightCount() int {
	l.lightsMu.RLock()
	defer l.lightsMu.RUnlock()

	if l.group == nil {
		return 0
	}
	return len(l.group.Lights())
}

// SetBrightness turns the group white at the configured color temperature,
// at the given backlight percentage.
func (l *LifxLights) SetBrightness(ctx context.Context, level float64) error {
	l.lightsMu.RLock()
	group := l.group
	l.lightsMu.RUnlock()

	if group == nil {
		return lights.ErrNoLights
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	color := newLifxColor(level, l.config)
	logger.With(zap.Float64("level", level), zap.Any("lifxColor", color)).Debug("Setting LIFX group color")

	return group.SetColor(color, transition)
}

func (l *LifxLights) Close() error {
	return l.client.Close()
}

func newLifxColor(level float64, config Config) common.Color {
	kelvin := math.Min(maxKelvin, math.Max(minKelvin, float64(config.Kelvin)))

	b := math.Min(1, math.Max(0, level/100))
	b = math.Min(config.MaxBrightness, math.Max(config.MinBrightness, b))

	return common.Color{
		Hue:        0,
		Saturation: 0,
		Brightness: uint16(math.Round(b * 0xFFFF)),
		Kelvin:     uint16(kelvin),
	}
}
