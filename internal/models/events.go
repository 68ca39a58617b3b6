package models

import "time"

// Event types
const (
	EventTypeReturnRequested       = "RETURN_REQUESTED"
	EventTypeAdjudicationCompleted = "ADJUDICATION_COMPLETED"
	EventTypeAdjudicationFailed    = "ADJUDICATION_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReturnRequestedEvent arrives from the upstream email/classification pipeline
// once an order has been verified against the order database.
type ReturnRequestedEvent struct {
	BaseEvent
	OrderID      string          `json:"order_id"`
	GraphVersion string          `json:"graph_version,omitempty"`
	Items        []OrderItemFact `json:"items"`
}

// AdjudicationCompletedEvent carries the full result to the downstream
// explanation generator.
type AdjudicationCompletedEvent struct {
	BaseEvent
	OrderID  string             `json:"order_id"`
	Decision string             `json:"decision"`
	Result   AdjudicationResult `json:"result"`
}

// AdjudicationFailedEvent published when a request cannot be adjudicated at
// all (bad input or unusable snapshot). Business denials are not failures.
type AdjudicationFailedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}
