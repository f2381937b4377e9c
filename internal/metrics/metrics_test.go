package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
}

func TestRecordDiagnosticRun(t *testing.T) {
	before := testutil.ToFloat64(diagnosticRuns.WithLabelValues("ping", OutcomeTimeout))

	RecordDiagnosticRun("ping", OutcomeTimeout, 30*time.Second)

	after := testutil.ToFloat64(diagnosticRuns.WithLabelValues("ping", OutcomeTimeout))
	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/api/ping", "400"))

	RecordHTTPRequest("POST", "/api/ping", 400, 3*time.Millisecond)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/api/ping", "400"))
	assert.Equal(t, before+1, after)
}

func TestRecordRateLimited(t *testing.T) {
	before := testutil.ToFloat64(rateLimited.WithLabelValues("/api/traceroute"))

	RecordRateLimited("/api/traceroute")

	assert.Equal(t, before+1, testutil.ToFloat64(rateLimited.WithLabelValues("/api/traceroute")))
}
