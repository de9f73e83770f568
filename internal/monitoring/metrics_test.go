// internal/monitoring/metrics_test.go
package monitoring

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m, handler := NewMetrics("pagesnap_test")

	m.CaptureStarted()
	m.ObserveCapture("png", 200, 1500*time.Millisecond, 40000)
	m.ObserveCapture("jpeg", 408, 30*time.Second, 0)
	m.CaptureFinished()
	m.RateLimitRejected()
	m.UpdateSystemMetrics()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`pagesnap_test_captures_total{format="png",status="200"} 1`,
		`pagesnap_test_captures_total{format="jpeg",status="408"} 1`,
		`pagesnap_test_capture_duration_seconds`,
		`pagesnap_test_captures_in_flight 0`,
		`pagesnap_test_rate_limit_rejections_total 1`,
		`pagesnap_test_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHealthSnapshot(t *testing.T) {
	calls := 0
	h := NewHealthReporter("pagesnap", "1.2.3", "hardened", func() int {
		calls++
		return 4
	})

	snap := h.Snapshot()

	if snap.Status != HealthStatusHealthy {
		t.Errorf("status = %s, want healthy", snap.Status)
	}
	if snap.Service != "pagesnap" || snap.Version != "1.2.3" || snap.Profile != "hardened" {
		t.Errorf("identity fields wrong: %+v", snap)
	}
	if snap.InFlight != 4 || calls != 1 {
		t.Errorf("in-flight = %d (calls %d), want 4 from the callback", snap.InFlight, calls)
	}
	if snap.Goroutines <= 0 {
		t.Error("goroutines must be positive")
	}
}

func TestHealthSnapshotNilInFlight(t *testing.T) {
	h := NewHealthReporter("pagesnap", "dev", "permissive", nil)
	if got := h.Snapshot().InFlight; got != 0 {
		t.Errorf("in-flight = %d, want 0 without a callback", got)
	}
}
