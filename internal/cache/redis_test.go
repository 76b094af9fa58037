package cache

import (
	"context"
	"testing"
	"time"
)

func TestHelpersWithoutClient(t *testing.T) {
	client = nil
	ctx := context.Background()

	SetCached(ctx, DashboardSummaryKey, []byte("{}"), time.Minute)
	if _, ok := GetCached(ctx, DashboardSummaryKey); ok {
		t.Fatal("expected miss without a client")
	}

	var dest map[string]interface{}
	SetJSON(ctx, AnalyticsCycleSummaryKey, map[string]int{"a": 1}, time.Minute)
	if GetJSON(ctx, AnalyticsCycleSummaryKey, &dest) {
		t.Fatal("expected miss without a client")
	}

	InvalidateReadModels(ctx)
	InvalidateKeys(ctx, DashboardSummaryKey)
	if IsHealthy() {
		t.Fatal("nil client must not report healthy")
	}
	Close()
}

func TestInitUnreachable(t *testing.T) {
	if err := Init("127.0.0.1:1", "", 0); err == nil {
		t.Fatal("expected connection error")
	}
	if GetClient() != nil {
		t.Fatal("client must stay nil after failed init")
	}
}

func TestReadModelKeysCoverEveryCachedModel(t *testing.T) {
	want := map[string]bool{
		DashboardSummaryKey:      true,
		AnalyticsCycleSummaryKey: true,
		AnalyticsBreakdownKey:    true,
	}
	if len(ReadModelKeys) != len(want) {
		t.Fatalf("ReadModelKeys = %v", ReadModelKeys)
	}
	for _, k := range ReadModelKeys {
		if !want[k] {
			t.Fatalf("unexpected key %q", k)
		}
	}
}
