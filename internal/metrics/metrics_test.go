package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(applyOperations.WithLabelValues("cache", "applied"))
	RecordOperation("cache", "applied")
	RecordOperation("cache", "applied")
	after := testutil.ToFloat64(applyOperations.WithLabelValues("cache", "applied"))
	assert.Equal(t, before+2, after)

	failed := testutil.ToFloat64(applyOperations.WithLabelValues("cache", "failed"))
	RecordOperation("cache", "failed")
	assert.Equal(t, failed+1, testutil.ToFloat64(applyOperations.WithLabelValues("cache", "failed")))
}

func TestSetPlanOperations(t *testing.T) {
	SetPlanOperations(6)
	assert.Equal(t, 6.0, testutil.ToFloat64(planOperations))
	SetPlanOperations(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(planOperations))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordOperation("network", "applied")
	ObserveApplyDuration(120 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "weft_apply_operations_total")
	assert.Contains(t, body, "weft_apply_duration_seconds")
	assert.Contains(t, body, "weft_plan_operations")
}
