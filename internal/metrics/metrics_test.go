package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeHost(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"https", "https://Feeds.Example.com/rss", "feeds.example.com"},
		{"no scheme", "example.com/rss.xml", "example.com"},
		{"port", "http://example.com:8080/feed", "example.com"},
		{"invalid", "http://%", "unknown"},
		{"empty", "", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeHost(tc.input); got != tc.expected {
				t.Errorf("SanitizeHost(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveEntry(OutcomeDelivered)
	m.ObserveEntry(OutcomeDelivered)
	m.ObserveEntry(OutcomeStale)
	m.ObserveFetchError("https://down.example.com/rss")
	m.ObserveRun(2*time.Second, 7, time.Unix(1704110400, 0))

	if v := testutil.ToFloat64(m.entriesTotal.WithLabelValues(OutcomeDelivered)); v != 2 {
		t.Errorf("delivered = %v, want 2", v)
	}
	if v := testutil.ToFloat64(m.fetchErrorsTotal.WithLabelValues("down.example.com")); v != 1 {
		t.Errorf("fetch errors = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.seenSetSize); v != 7 {
		t.Errorf("seen ids = %v, want 7", v)
	}
	if v := testutil.ToFloat64(m.runsTotal); v != 1 {
		t.Errorf("runs = %v, want 1", v)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveEntry(OutcomeFailed)
	m.ObserveFetchError("x")
	m.ObserveRun(time.Second, 1, time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil handler code = %d", rec.Code)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveEntry(OutcomeDuplicate)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `feedwatch_entries_total{outcome="duplicate"} 1`) {
		t.Fatalf("metrics output missing entries counter:\n%s", body)
	}
}
