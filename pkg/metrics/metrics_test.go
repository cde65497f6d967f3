package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounterVec(t *testing.T) {
	before := testutil.ToFloat64(OrderTransitionsTotal.WithLabelValues("VALIDEE"))

	IncCounterVec(OrderTransitionsTotal, map[string]string{"state": "VALIDEE"})
	IncCounterVec(OrderTransitionsTotal, map[string]string{"state": "VALIDEE"})
	IncCounterVec(OrderTransitionsTotal, map[string]string{"state": "ANNULEE"})

	assert.Equal(t, before+2, testutil.ToFloat64(OrderTransitionsTotal.WithLabelValues("VALIDEE")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders", "200"))

	ObserveRequest("POST", "/api/v1/orders", "200", 0.05)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders", "200")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration), 1)
}

func TestAuditGauge(t *testing.T) {
	AuditQueueLength.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(AuditQueueLength))
	AuditQueueLength.Dec()
	assert.Equal(t, float64(2), testutil.ToFloat64(AuditQueueLength))
}
