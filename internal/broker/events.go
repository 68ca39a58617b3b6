package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"return-adjudicator/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishAdjudicationCompleted publishes the result for the downstream
// explanation generator.
func (ep *EventPublisher) PublishAdjudicationCompleted(ctx context.Context, event *models.AdjudicationCompletedEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAdjudicationFailed publishes a request-level failure.
func (ep *EventPublisher) PublishAdjudicationFailed(ctx context.Context, event *models.AdjudicationFailedEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onReturnRequested func(context.Context, *models.ReturnRequestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnReturnRequested registers a handler for ReturnRequested events
func (eh *EventHandler) OnReturnRequested(handler func(context.Context, *models.ReturnRequestedEvent) error) {
	eh.onReturnRequested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeReturnRequested:
		if eh.onReturnRequested != nil {
			var event models.ReturnRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReturnRequested event: %w", err)
			}
			return eh.onReturnRequested(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
