package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(Whistles.WithLabelValues("pet", "called"))
	RecordWhistle("pet", "called")
	if got := testutil.ToFloat64(Whistles.WithLabelValues("pet", "called")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}

	purged := testutil.ToFloat64(DeadPurged)
	RecordDeadPurged(0)
	RecordDeadPurged(2)
	if got := testutil.ToFloat64(DeadPurged); got != purged+2 {
		t.Fatalf("expected %v, got %v", purged+2, got)
	}

	SetRegistrySize("overworld", 7)
	if got := testutil.ToFloat64(RegistrySize.WithLabelValues("overworld")); got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}

	// sin panic
	RecordTeleported("mount", "live", 1)
	RecordRecallFailure("mount", "no_state")
	RecordSnapshot("find")
	RecordPersist(10*time.Millisecond, true)
	RecordCommand("list", false)
}
