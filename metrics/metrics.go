// Package metrics exports discovery activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lightyen/ipv6-checker/discovery"
)

const namespace = "ipv6_checker"

type Collector struct {
	reg *prometheus.Registry

	probes        *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	races         *prometheus.CounterVec
	raceDuration  prometheus.Histogram
}

var _ discovery.Observer = (*Collector)(nil)

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Endpoint probes by outcome.",
		}, []string{"endpoint", "status"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Time spent on one endpoint probe.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		races: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "races_total",
			Help:      "Discovery races by result.",
		}, []string{"result"}),
		raceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "race_duration_seconds",
			Help:      "Time until a discovery race resolved.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}),
	}

	c.reg.MustRegister(
		c.probes,
		c.probeDuration,
		c.races,
		c.raceDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) ObserveProbe(o discovery.Outcome) {
	c.probes.WithLabelValues(o.Endpoint, o.Status.String()).Inc()
	c.probeDuration.WithLabelValues(o.Endpoint).Observe(o.Elapsed.Seconds())
}

func (c *Collector) ObserveRace(r discovery.Result) {
	result := "not_found"
	if r.Found() {
		result = "found"
	}
	c.races.WithLabelValues(result).Inc()
	c.raceDuration.Observe(r.Elapsed.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
