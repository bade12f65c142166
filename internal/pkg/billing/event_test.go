package billing

import (
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   string
		want EventKind
	}{
		{in: "customer.subscription.created", want: EventSubscriptionCreated},
		{in: "customer.subscription.updated", want: EventSubscriptionUpdated},
		{in: "customer.subscription.deleted", want: EventSubscriptionDeleted},
		{in: "invoice.payment_succeeded", want: EventPaymentSucceeded},
		{in: "invoice.payment_failed", want: EventPaymentFailed},
		{in: "  Customer.Subscription.Created  ", want: EventSubscriptionCreated},
		{in: "charge.refunded", want: EventUnknown},
		{in: "", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.in); got != tt.want {
			t.Fatalf("KindOf(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseEvent_Subscription(t *testing.T) {
	raw := []byte(`{
		"id": "evt_123",
		"type": "customer.subscription.updated",
		"data": {
			"object": {
				"id": "sub_456",
				"customer": "cus_789",
				"status": "active",
				"current_period_start": 1700000000,
				"current_period_end": 1702592000,
				"metadata": { "chapa": "1042" }
			}
		}
	}`)

	ev, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_123" || ev.Kind != EventSubscriptionUpdated {
		t.Fatalf("unexpected envelope: id=%q kind=%v", ev.ID, ev.Kind)
	}
	if ev.Subscription.ID != "sub_456" || ev.Subscription.Customer != "cus_789" {
		t.Fatalf("unexpected subscription refs: %+v", ev.Subscription)
	}
	if ev.Subscription.Chapa() != "1042" {
		t.Fatalf("expected chapa 1042, got %q", ev.Subscription.Chapa())
	}
	if got := ev.Subscription.PeriodStart(); got == nil || !got.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected period start: %v", got)
	}
}

func TestParseEvent_NoChapa(t *testing.T) {
	raw := []byte(`{
		"id": "evt_124",
		"type": "customer.subscription.created",
		"data": { "object": { "id": "sub_1", "customer": "cus_1", "status": "active" } }
	}`)

	ev, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Subscription.Chapa() != "" {
		t.Fatalf("expected empty chapa, got %q", ev.Subscription.Chapa())
	}
	if ev.Subscription.PeriodEnd() != nil {
		t.Fatalf("expected nil period end for missing timestamp")
	}
}

func TestParseEvent_UnknownKindKeepsEnvelopeOnly(t *testing.T) {
	raw := []byte(`{"id": "evt_125", "type": "charge.refunded", "data": {"object": {"id": "ch_1"}}}`)

	ev, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Kind != EventUnknown {
		t.Fatalf("expected unknown kind, got %v", ev.Kind)
	}
	if ev.Subscription.ID != "" {
		t.Fatalf("expected empty subscription for non-subscription event")
	}
}

func TestParseEvent_Invalid(t *testing.T) {
	if _, err := ParseEvent([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
	if _, err := ParseEvent([]byte(`{"id":"evt_1"}`)); err == nil {
		t.Fatalf("expected error for missing event type")
	}
	if _, err := ParseEvent([]byte(`{"id":"evt_1","type":"customer.subscription.created"}`)); err == nil {
		t.Fatalf("expected error for subscription event without data object")
	}
}
