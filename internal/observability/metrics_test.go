package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies that label dimensions match usage across the client,
// http, service and store packages.
func TestMetrics_Usable(t *testing.T) {
	// Route uses the path template to avoid cardinality (/weather/{zipCode} not /weather/10001)
	HTTPRequestsTotal.WithLabelValues("GET", "/weather/{zipCode}", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/weather/{zipCode}").Observe(0.01)
	WeatherAPICallsTotal.WithLabelValues("success").Inc()
	WeatherAPICallsTotal.WithLabelValues("network").Inc()
	WeatherAPIDuration.WithLabelValues("success").Observe(0.1)
	WeatherQueriesTotal.Inc()
	HistoryStoreOperationsTotal.WithLabelValues("create", "success").Inc()
	HistoryStoreDuration.WithLabelValues("list_by_zip").Observe(0.002)
	BestEffortFailuresTotal.WithLabelValues("auto_save").Inc()
}

func TestMetricZipLabel(t *testing.T) {
	SetTrackedZipCodes([]string{"10001", " 94103 "})
	defer SetTrackedZipCodes(nil)

	tests := []struct {
		zip  string
		want string
	}{
		{"10001", "10001"},
		{"94103", "94103"},
		{" 10001 ", "10001"},
		{"60601", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := MetricZipLabel(tt.zip); got != tt.want {
			t.Errorf("MetricZipLabel(%q) = %q, want %q", tt.zip, got, tt.want)
		}
	}
	RecordWeatherQuery("10001")
	RecordWeatherQuery("unknown")
}

// TestMetricsHandler_ServesPrometheusFormat verifies that MetricsHandler serves
// Prometheus text exposition format.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/", "2xx").Inc()

	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "httpRequestsTotal") {
		t.Error("MetricsHandler response should contain metric output")
	}
}
