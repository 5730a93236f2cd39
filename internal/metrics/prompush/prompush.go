// Package prompush implements a Prometheus backend for the metrics package.
//
// Collectors live in a private registry. The registry can be pushed to a
// Pushgateway (one-shot CLI runs) or served for scraping through Handler
// (the long-running API server).
package prompush

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics"
)

// Backend is a Prometheus metrics backend.
type Backend struct {
	gatewayURL string // empty in scrape mode
	jobName    string
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	rowCounter    *prometheus.CounterVec
	uploadCounter *prometheus.CounterVec
}

// NewBackend constructs a backend that pushes to gatewayURL on Flush.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	return newBackend(jobName, gatewayURL)
}

// NewScrapeBackend constructs a backend that is only read through Handler.
// Flush is a no-op.
func NewScrapeBackend(jobName string) (*Backend, error) {
	return newBackend(jobName, "")
}

func newBackend(jobName, gatewayURL string) (*Backend, error) {
	if jobName == "" {
		jobName = "propimport"
	}
	reg := prometheus.NewRegistry()

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        reg,
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDurationSeconds,
			Help:    "Pipeline step duration in seconds by step and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows by kind (parsed, rejected, committed, commit_failed, skipped).",
		}, []string{"kind"}),
		uploadCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.UploadsTotal,
			Help: "Uploads by terminal outcome.",
		}, []string{"outcome"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   b.stepCounter,
		"step histogram": b.stepDuration,
		"row counter":    b.rowCounter,
		"upload counter": b.uploadCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.UploadsTotal:
		if b.uploadCounter != nil {
			b.uploadCounter.WithLabelValues(labels["outcome"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway. In scrape mode it does
// nothing.
func (b *Backend) Flush() error {
	if b.gatewayURL == "" {
		return nil
	}
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}

// Handler exposes the registry in the Prometheus text format.
func (b *Backend) Handler() http.Handler {
	return promhttp.HandlerFor(b.reg, promhttp.HandlerOpts{})
}
