// Package metrics exports the brightness state as Prometheus metrics.
package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scheerer/sunset/internal/brightness"
	"github.com/scheerer/sunset/internal/display"
)

const namespace = "sunset"

type Recorder struct {
	registry *prom.Registry

	brightness     prom.Gauge
	lightLevel     prom.Gauge
	redshiftFactor prom.Gauge
	restarts       prom.Counter
	failures       *prom.CounterVec
}

var _ display.Observer = (*Recorder)(nil)

// New builds a Recorder on its own registry, so tests can create as many
// as they like.
func New() *Recorder {
	r := &Recorder{
		registry:       prom.NewRegistry(),
		brightness:     prom.NewGauge(prom.GaugeOpts{Namespace: namespace, Name: "brightness", Help: "Current brightness value (10-200)"}),
		lightLevel:     prom.NewGauge(prom.GaugeOpts{Namespace: namespace, Name: "light_level", Help: "Backlight percentage derived from the brightness"}),
		redshiftFactor: prom.NewGauge(prom.GaugeOpts{Namespace: namespace, Name: "redshift_factor", Help: "Color temperature brightness blend derived from the brightness"}),
		restarts:       prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "restarts_total", Help: "Successful restart cycles"}),
		failures: prom.NewCounterVec(prom.CounterOpts{Namespace: namespace, Name: "restart_failures_total", Help: "Failed restart cycles by failing stage"},
			[]string{"stage"}),
	}

	r.registry.MustRegister(r.brightness, r.lightLevel, r.redshiftFactor, r.restarts, r.failures)
	r.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))

	// expose both stages from the start
	r.failures.WithLabelValues(string(display.StageBacklight))
	r.failures.WithLabelValues(string(display.StageRedshift))

	return r
}

func (r *Recorder) observe(b brightness.Brightness) {
	r.brightness.Set(b.Value())
	r.lightLevel.Set(b.LightLevel())
	r.redshiftFactor.Set(b.RedshiftFactor())
}

func (r *Recorder) Initialized(b brightness.Brightness) {
	r.observe(b)
}

func (r *Recorder) Restarted(b brightness.Brightness) {
	r.observe(b)
	r.restarts.Inc()
}

func (r *Recorder) RestartFailed(stage display.Stage, _ error) {
	r.failures.WithLabelValues(string(stage)).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}
