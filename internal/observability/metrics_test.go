package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danmuck/rwfcodec/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("rwfinspect", "GET", "/health", 200, 12*time.Millisecond)
	RecordSetDefUpdate("fields")

	before := testutil.ToFloat64(decodes.WithLabelValues("MAP", "SUCCESS"))
	RecordDecode("MAP", "SUCCESS", 512, 40)
	RecordDecode("MAP", "SUCCESS", 0, 0)
	if got := testutil.ToFloat64(decodes.WithLabelValues("MAP", "SUCCESS")); got != before+2 {
		t.Fatalf("expected decode counter %v, got %v", before+2, got)
	}

	before = testutil.ToFloat64(encodes.WithLabelValues("FIELD_LIST", "BUFFER_TOO_SMALL"))
	RecordEncode("FIELD_LIST", "BUFFER_TOO_SMALL", 0)
	if got := testutil.ToFloat64(encodes.WithLabelValues("FIELD_LIST", "BUFFER_TOO_SMALL")); got != before+1 {
		t.Fatalf("expected encode counter %v, got %v", before+1, got)
	}
}
