package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventKind is the closed set of webhook event kinds this service reacts to.
// Raw provider event-type strings are mapped onto it exactly once, at parse
// time, so dispatch can be exhaustive instead of stringly-typed.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSubscriptionCreated
	EventSubscriptionUpdated
	EventSubscriptionDeleted
	EventPaymentSucceeded
	EventPaymentFailed
)

func (k EventKind) String() string {
	switch k {
	case EventSubscriptionCreated:
		return "customer.subscription.created"
	case EventSubscriptionUpdated:
		return "customer.subscription.updated"
	case EventSubscriptionDeleted:
		return "customer.subscription.deleted"
	case EventPaymentSucceeded:
		return "invoice.payment_succeeded"
	case EventPaymentFailed:
		return "invoice.payment_failed"
	default:
		return "unknown"
	}
}

// KindOf maps a raw provider event-type string to an EventKind.
func KindOf(eventType string) EventKind {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	case "invoice.payment_succeeded":
		return EventPaymentSucceeded
	case "invoice.payment_failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}

// SubscriptionObject is the subscription payload embedded in subscription
// lifecycle events. Period timestamps arrive as unix seconds.
type SubscriptionObject struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	Metadata           map[string]string `json:"metadata"`
}

// Chapa returns the badge number carried in the subscription metadata, or ""
// when the event cannot be correlated to a worker.
func (s SubscriptionObject) Chapa() string {
	return strings.TrimSpace(s.Metadata["chapa"])
}

// PeriodStart converts the unix period start to a time, nil when absent.
func (s SubscriptionObject) PeriodStart() *time.Time {
	return unixTimePtr(s.CurrentPeriodStart)
}

// PeriodEnd converts the unix period end to a time, nil when absent.
func (s SubscriptionObject) PeriodEnd() *time.Time {
	return unixTimePtr(s.CurrentPeriodEnd)
}

func unixTimePtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// Event is a verified, parsed webhook event.
type Event struct {
	ID           string
	Type         string
	Kind         EventKind
	Subscription SubscriptionObject
}

type rawEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified webhook payload into an Event. For
// subscription lifecycle kinds the embedded subscription object is decoded as
// well; other kinds keep only the envelope.
func ParseEvent(payload []byte) (*Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook envelope: %w", err)
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("webhook envelope has no event type")
	}

	ev := &Event{
		ID:   strings.TrimSpace(raw.ID),
		Type: strings.TrimSpace(raw.Type),
		Kind: KindOf(raw.Type),
	}

	switch ev.Kind {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		if len(raw.Data.Object) == 0 {
			return nil, errors.New("subscription event has no data object")
		}
		if err := json.Unmarshal(raw.Data.Object, &ev.Subscription); err != nil {
			return nil, fmt.Errorf("decode subscription object: %w", err)
		}
	}
	return ev, nil
}
