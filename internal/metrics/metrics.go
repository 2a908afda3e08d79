// Package metrics records statistics about bot runs and pushes them to a
// Prometheus Pushgateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/outcome"
)

const metricNamespace = "fedora_bot"

const pushJobName = "fedora_bot"

const (
	outcomesMetricName    = "outcomes_total"
	runDurationMetricName = "run_duration_seconds"
	lastRunMetricName     = "last_run_timestamp_seconds"
)

const (
	componentLabel = "component"
	actionLabel    = "action"
)

// Collector records the metrics of a single run.
type Collector struct {
	logger      *zap.Logger
	registry    *prometheus.Registry
	outcomes    *prometheus.CounterVec
	runDuration prometheus.Gauge
	lastRun     prometheus.Gauge
}

func New() *Collector {
	c := Collector{
		logger:   zap.L().Named("metrics"),
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      outcomesMetricName,
				Help:      "count of component outcomes by action",
			},
			[]string{componentLabel, actionLabel},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      runDurationMetricName,
				Help:      "duration of the last run",
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      lastRunMetricName,
				Help:      "unix timestamp of the end of the last run",
			},
		),
	}

	c.registry.MustRegister(c.outcomes, c.runDuration, c.lastRun)

	return &c
}

// Registry returns the registry that contains all metrics of the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// OutcomeInc increases the counter for the action of the record.
func (c *Collector) OutcomeInc(r *outcome.Record) {
	cnt, err := c.outcomes.GetMetricWith(prometheus.Labels{
		componentLabel: r.Component,
		actionLabel:    string(r.Action),
	})
	if err != nil {
		c.logger.Warn(
			"could not record metric",
			zap.String("metric", outcomesMetricName),
			logfields.Event("recording_metric_failed"),
			zap.Error(err),
		)
		return
	}

	cnt.Inc()
}

// RunFinished records the duration of a run that ended at end.
func (c *Collector) RunFinished(duration time.Duration, end time.Time) {
	c.runDuration.Set(duration.Seconds())
	c.lastRun.Set(float64(end.Unix()))
}

// Push sends all metrics to the Pushgateway at url.
func (c *Collector) Push(url string) error {
	return push.New(url, pushJobName).Gatherer(c.registry).Push()
}
