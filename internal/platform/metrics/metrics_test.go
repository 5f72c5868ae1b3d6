package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveLogin("member", "success")
	m.ObserveLogin("member", "success")
	m.ObserveLogin("admin", "denied")
	m.AddFanOutRows(3)
	m.AddFanOutRows(0)

	body := scrape(t, m)
	for _, want := range []string{
		`guards_logins_total{kind="member",outcome="success"} 2`,
		`guards_logins_total{kind="admin",outcome="denied"} 1`,
		`guards_miqaat_member_rows_added_total 3`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/v1/miqaat", 200, 15*time.Millisecond)
	m.TrackActiveTokens(func() int { return 4 })

	body := scrape(t, m)
	for _, want := range []string{
		`guards_http_requests_total{method="GET",route="/api/v1/miqaat",status="200"} 1`,
		`guards_active_tokens 4`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}
