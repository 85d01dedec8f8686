package tracking

import (
	"context"
	"testing"
	"time"
)

// The global meter provider defaults to a no-op implementation, so these
// verify the record paths are safe to call without any SDK wired in.
func TestRecordWithNoopProvider(t *testing.T) {
	ctx := context.Background()

	RecordRequest(ctx, "GET", "/data/x", 200, 150*time.Millisecond)
	RecordRetry(ctx, "network_error")
	RecordAdmissionRejected(ctx, "/data/x")
}

func TestRecordRepeatedCallsReuseInstruments(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		RecordRequest(ctx, "POST", "/articles", 503, time.Second)
		RecordRetry(ctx, "server_error")
	}
}
