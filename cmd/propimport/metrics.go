package main

import (
	"fmt"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics/datadog"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics/prompush"
)

// setupMetrics installs the configured backend. A backend that fails to
// initialise is logged and metrics stay disabled.
func (a *app) setupMetrics() error {
	log := a.log.WithField("backend", a.cfg.MetricsBackend)

	var (
		b   metrics.Backend
		err error
	)
	switch a.cfg.MetricsBackend {
	case "", "none":
		log.Debug("metrics: disabled")
		return nil
	case "pushgateway":
		b, err = prompush.NewBackend(a.cfg.Job, a.cfg.PushgatewayURL)
	case "prometheus":
		var pb *prompush.Backend
		pb, err = prompush.NewScrapeBackend(a.cfg.Job)
		if err == nil {
			a.metricsHandler = pb.Handler()
			b = pb
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      a.cfg.DatadogAddr,
			Namespace: "propimport.",
			Tags:      []string{"job:" + a.cfg.Job},
		})
	default:
		return usageError(fmt.Errorf("unknown metrics backend %q", a.cfg.MetricsBackend))
	}
	if err != nil {
		log.WithError(err).Warn("metrics: backend init failed; using nop")
		return nil
	}

	metrics.SetBackend(b)
	a.cleanup = append(a.cleanup, func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush failed")
		}
	})
	log.Debug("metrics: enabled")
	return nil
}
