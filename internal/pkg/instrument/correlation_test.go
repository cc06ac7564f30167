package instrument

import "testing"

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := SetCorrelationID(t.Context(), "cid-123")

	if got := GetCorrelationID(ctx); got != "cid-123" {
		t.Fatalf("GetCorrelationID = %q, want %q", got, "cid-123")
	}
}

func TestCorrelationIDAbsent(t *testing.T) {
	if got := GetCorrelationID(t.Context()); got != "" {
		t.Fatalf("GetCorrelationID on bare context = %q, want empty", got)
	}
}

func TestCorrelationIDOverwrite(t *testing.T) {
	ctx := SetCorrelationID(t.Context(), "first")
	ctx = SetCorrelationID(ctx, "second")

	if got := GetCorrelationID(ctx); got != "second" {
		t.Fatalf("GetCorrelationID = %q, want %q", got, "second")
	}
}
