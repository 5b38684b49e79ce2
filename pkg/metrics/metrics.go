// Package metrics exposes ACS decision outcomes as Prometheus gauges and
// counters, served over the standard promhttp handler.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/open-acs/acsd/pkg/logx"
)

// Collector holds the ACS-facing metric instruments, registered against
// their own registry rather than the global default so multiple Collectors
// (e.g. one per test) never collide.
type Collector struct {
	logger   *logx.Logger
	registry *prometheus.Registry

	sweepsTotal       *prometheus.CounterVec
	sweepDuration     prometheus.Histogram
	rocRequestsTotal  prometheus.Counter
	lastChosenChannel prometheus.Gauge
	lastLowestNF      prometheus.Gauge
	interferenceByChn *prometheus.GaugeVec
}

// NewCollector builds a Collector with its own Prometheus registry.
func NewCollector(logger *logx.Logger) *Collector {
	c := &Collector{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		sweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acs_sweeps_total",
			Help: "Completed ACS invocations by outcome.",
		}, []string{"status"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acs_sweep_duration_seconds",
			Help:    "Wall-clock duration of a completed ACS invocation.",
			Buckets: prometheus.DefBuckets,
		}),
		rocRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acs_roc_requests_total",
			Help: "Remain-on-channel dwell requests issued.",
		}),
		lastChosenChannel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "acs_last_chosen_channel",
			Help: "Channel number selected by the most recent successful invocation.",
		}),
		lastLowestNF: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "acs_last_lowest_noise_floor_dbm",
			Help: "Reference noise floor used for the most recent successful invocation.",
		}),
		interferenceByChn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acs_channel_interference_factor",
			Help: "Mean interference factor per surveyed channel in the most recent invocation.",
		}, []string{"channel"}),
	}

	c.registry.MustRegister(
		c.sweepsTotal, c.sweepDuration, c.rocRequestsTotal,
		c.lastChosenChannel, c.lastLowestNF, c.interferenceByChn,
	)

	return c
}

// ObserveSweep records one completed invocation's outcome and duration.
func (c *Collector) ObserveSweep(status string, durationSeconds float64) {
	c.sweepsTotal.WithLabelValues(status).Inc()
	c.sweepDuration.Observe(durationSeconds)
}

// ObserveROCRequest records one remain-on-channel dwell request.
func (c *Collector) ObserveROCRequest() {
	c.rocRequestsTotal.Inc()
}

// SetDecision records the outcome of a successful selection.
func (c *Collector) SetDecision(channel int, lowestNF int8) {
	c.lastChosenChannel.Set(float64(channel))
	c.lastLowestNF.Set(float64(lowestNF))
}

// SetChannelInterference records one channel's mean interference factor.
func (c *Collector) SetChannelInterference(channel int, factor float64) {
	c.interferenceByChn.WithLabelValues(fmt.Sprintf("%d", channel)).Set(factor)
}

// Handler returns the promhttp handler for this Collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ListenAndServe starts a dedicated metrics listener on addr, serving /metrics.
func (c *Collector) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	c.logger.Info("starting metrics listener", "address", addr)
	return http.ListenAndServe(addr, mux)
}
