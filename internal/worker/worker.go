package worker

import (
	"context"
	"log"
	"time"

	"return-adjudicator/internal/broker"
	"return-adjudicator/internal/models"
	"return-adjudicator/internal/service"
	"return-adjudicator/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdjudicationWorker consumes verified return requests from the upstream
// email/classification pipeline and runs them through the adjudication
// service. Duplicate deliveries are dropped via an idempotency key on the
// event id.
type AdjudicationWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	service        *service.AdjudicationService
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	idempotency    IdempotencyChecker
}

// IdempotencyChecker marks and checks processed event ids.
type IdempotencyChecker interface {
	CheckIdempotencyKey(ctx context.Context, key string) (bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// NewAdjudicationWorker creates a new adjudication worker
func NewAdjudicationWorker(
	consumer *broker.Consumer,
	svc *service.AdjudicationService,
	eventPublisher *broker.EventPublisher,
	idempotency IdempotencyChecker,
) *AdjudicationWorker {
	w := &AdjudicationWorker{
		consumer:       consumer,
		service:        svc,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		idempotency:    idempotency,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnReturnRequested(w.handleReturnRequested)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AdjudicationWorker) Start(ctx context.Context) error {
	log.Println("Starting adjudication worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the underlying consumer
func (w *AdjudicationWorker) Stop() {
	if err := w.consumer.Close(); err != nil {
		w.logger.Error("Failed to close consumer", zap.Error(err))
	}
}

func (w *AdjudicationWorker) handleReturnRequested(ctx context.Context, event *models.ReturnRequestedEvent) error {
	seen, err := w.idempotency.CheckIdempotencyKey(ctx, event.EventID)
	if err != nil {
		w.logger.Warn("Idempotency check failed, processing anyway",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	} else if seen {
		w.logger.Info("Duplicate return request event, skipping",
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.OrderID))
		return nil
	}

	req := &service.AdjudicateRequest{
		OrderID:      event.OrderID,
		GraphVersion: event.GraphVersion,
		Items:        event.Items,
	}

	if _, err := w.service.Adjudicate(ctx, req); err != nil {
		w.logger.Error("Adjudication failed",
			zap.String("order_id", event.OrderID),
			zap.Error(err))

		failed := &models.AdjudicationFailedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeAdjudicationFailed,
				Timestamp: time.Now(),
			},
			OrderID: event.OrderID,
			Reason:  err.Error(),
		}
		if pubErr := w.eventPublisher.PublishAdjudicationFailed(ctx, failed); pubErr != nil {
			w.logger.Error("Failed to publish AdjudicationFailed event", zap.Error(pubErr))
		}
		// Commit the message anyway: malformed input will not become valid
		// on redelivery.
	}

	if err := w.idempotency.SetIdempotencyKey(ctx, event.EventID, event.OrderID, 24*time.Hour); err != nil {
		w.logger.Warn("Failed to record idempotency key", zap.Error(err))
	}

	return nil
}
