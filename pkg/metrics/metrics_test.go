// SPDX-License-Identifier: MIT

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

func TestCollectorExposesCounters(t *testing.T) {
	counters := runstats.New()
	counters.Inc("filter_reject.namespace", 3)
	counters.Inc("extractor_warning.syllable_count", 1)

	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector("lexicon", counters)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := make(map[string]float64)
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			names[fam.GetName()] = m.GetCounter().GetValue()
		}
	}
	if names["lexicon_filter_reject_namespace"] != 3 {
		t.Errorf("filter_reject.namespace = %v, want 3", names["lexicon_filter_reject_namespace"])
	}
	if names["lexicon_extractor_warning_syllable_count"] != 1 {
		t.Errorf("extractor_warning.syllable_count = %v, want 1", names["lexicon_extractor_warning_syllable_count"])
	}
}

func TestSanitizeName(t *testing.T) {
	got := sanitizeName("filter_reject.script-gate")
	want := "filter_reject_script_gate"
	if got != want {
		t.Errorf("sanitizeName = %q, want %q", got, want)
	}
}

func TestServeRespondsOnMetricsPath(t *testing.T) {
	counters := runstats.New()
	counters.Inc("pages_scanned", 42)

	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector("lexicon", counters)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	server := httptest.NewServer(metricsHandler(registry))
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])
	if !strings.Contains(body, "lexicon_pages_scanned") {
		t.Errorf("response missing lexicon_pages_scanned, got %q", body)
	}
}
