// SPDX-License-Identifier: MIT

// Package metrics exposes a run's runstats.Counters over an optional
// Prometheus /metrics endpoint (spec §7's run-statistics summary,
// adapted from the teacher's webserver metrics instead of discarded
// once the run finishes).
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// counterCollector adapts runstats.Counters to prometheus.Collector.
// Counter names are registered lazily as the run proceeds (filter
// rejects and extractor warnings are only known by name once they
// first fire), so a fixed set of prometheus.Counter vars registered up
// front — the teacher's NewGaugeFunc-per-stat style — doesn't fit;
// Collect instead walks a fresh Snapshot on every scrape.
type counterCollector struct {
	namespace string
	counters  *runstats.Counters
}

// NewCollector wraps counters as a prometheus.Collector under the
// given metric namespace (e.g. "lexicon").
func NewCollector(namespace string, counters *runstats.Counters) prometheus.Collector {
	return &counterCollector{namespace: namespace, counters: counters}
}

func (c *counterCollector) Describe(ch chan<- *prometheus.Desc) {
	// Dynamic counter set: nothing to describe up front.
}

func (c *counterCollector) Collect(ch chan<- prometheus.Metric) {
	for name, value := range c.counters.Snapshot() {
		desc := prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, "", sanitizeName(name)),
			fmt.Sprintf("Run counter %q (spec §7).", name),
			nil, nil,
		)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(value))
	}
}

// sanitizeName maps a runstats counter name (e.g.
// "filter_reject.namespace") to a Prometheus-legal metric name
// fragment, since Prometheus names only allow [a-zA-Z0-9_:].
func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// metricsHandler builds the /metrics-serving mux for registry, split
// out from Serve so it can be exercised against an httptest.Server
// without binding a real listening port.
func metricsHandler(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve starts an HTTP server on addr exposing /metrics until ctx is
// canceled, then shuts it down. Intended to run in its own goroutine
// alongside a scan run, per scan's optional --metrics-addr flag
// (build-trie has no such flag).
func Serve(ctx context.Context, addr string, collector prometheus.Collector) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return fmt.Errorf("metrics: register: %w", err)
	}

	server := &http.Server{Addr: addr, Handler: metricsHandler(registry)}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("metrics: serve %s: %w", addr, err)
	}
}
