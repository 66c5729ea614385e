// Package metrics exports registry statistics and model event counts to
// Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/registry"
)

var (
	modelsDesc = prometheus.NewDesc(
		"jsonmodel_models",
		"Number of models per namespace",
		[]string{"namespace"}, nil,
	)
	bytesDesc = prometheus.NewDesc(
		"jsonmodel_document_bytes",
		"Summed compact JSON size of the models per namespace",
		[]string{"namespace"}, nil,
	)
)

// Collector reads namespace statistics from a Registry at scrape time and
// counts the events of instrumented models.
type Collector struct {
	reg    *registry.Registry
	events *prometheus.CounterVec
}

// NewCollector returns a Collector over reg. Register it with a
// prometheus.Registerer to expose it.
func NewCollector(reg *registry.Registry) *Collector {
	return &Collector{
		reg: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jsonmodel_events_total",
			Help: "Total events emitted by instrumented models",
		}, []string{"namespace", "model", "kind"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- modelsDesc
	ch <- bytesDesc
	c.events.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for ns, st := range c.reg.ManagerStatistics() {
		ch <- prometheus.MustNewConstMetric(modelsDesc, prometheus.GaugeValue, float64(st.ModelCount), ns)
		ch <- prometheus.MustNewConstMetric(bytesDesc, prometheus.GaugeValue, float64(st.TotalSize), ns)
	}
	c.events.Collect(ch)
}

// Instrument counts every event kind model emits under the given labels.
// The returned function removes the listeners again.
func (c *Collector) Instrument(ns, name string, model *jsonmodel.Model) (stop func()) {
	subs := make([]jsonmodel.Subscription, 0, len(jsonmodel.EventKinds))
	for _, kind := range jsonmodel.EventKinds {
		counter := c.events.WithLabelValues(ns, name, string(kind))
		subs = append(subs, model.On(kind, func(jsonmodel.Event) { counter.Inc() }))
	}
	return func() {
		for _, s := range subs {
			model.Off(s)
		}
	}
}

// Events exposes the event counter, mainly for tests and custom exporters.
func (c *Collector) Events() *prometheus.CounterVec { return c.events }
