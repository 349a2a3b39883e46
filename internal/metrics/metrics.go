package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	RouteRequests *prometheus.CounterVec   // provider, outcome
	RouteDuration *prometheus.HistogramVec // provider

	ShapesGenerated    *prometheus.CounterVec // mode: straight|streets
	ShapeBuildFailures *prometheus.CounterVec // reason: no_geometry|superseded|error
	ShapesDeleted      prometheus.Counter
	ShapeFitIssues     prometheus.Histogram

	NormalizeRequests *prometheus.CounterVec // interpolated: true|false
	TripsNormalized   prometheus.Counter

	FeedImports *prometheus.CounterVec // result: imported|skipped|failed

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_routing_requests_total",
			Help: "Routing provider attempts by outcome.",
		}, []string{"provider", "outcome"}),
		RouteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "editor_routing_duration_seconds",
			Help:    "Time spent waiting on a routing provider.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"provider"}),
		ShapesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_shapes_generated_total",
			Help: "Pattern shapes committed.",
		}, []string{"mode"}),
		ShapeBuildFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_shape_build_failures_total",
			Help: "Pattern shape builds that were not committed.",
		}, []string{"reason"}),
		ShapesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "editor_shapes_deleted_total",
			Help: "Pattern shapes deleted.",
		}),
		ShapeFitIssues: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "editor_shape_fit_issues",
			Help:    "Halts flagged as too far from the shape per check.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		NormalizeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_normalize_requests_total",
			Help: "Stop time normalization requests.",
		}, []string{"interpolated"}),
		TripsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "editor_trips_normalized_total",
			Help: "Trips whose stop times were rewritten.",
		}),
		FeedImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_feed_imports_total",
			Help: "Static feed imports by result.",
		}, []string{"result"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "editor_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "editor_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "editor_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "editor_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.RouteRequests, c.RouteDuration,
		c.ShapesGenerated, c.ShapeBuildFailures, c.ShapesDeleted, c.ShapeFitIssues,
		c.NormalizeRequests, c.TripsNormalized,
		c.FeedImports,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
	)
	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

func (c *Collector) ObserveRoute(provider, outcome string, elapsed time.Duration) {
	c.RouteRequests.WithLabelValues(provider, outcome).Inc()
	if outcome != "skipped" {
		c.RouteDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
