package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"return-adjudicator/config"
	"return-adjudicator/internal/broker"
	"return-adjudicator/internal/engine"
	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"
	"return-adjudicator/internal/redisclient"
	"return-adjudicator/internal/store"
	"return-adjudicator/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdjudicationService wires the decision engine to its collaborators: the
// graph store, the snapshot cache, the classifier, the audit table, and the
// event stream. The engine itself stays free of all of them.
type AdjudicationService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	adjudicator    *engine.Adjudicator
	policy         config.PolicyConfig
	logger         *zap.Logger
}

// NewAdjudicationService creates a new adjudication service
func NewAdjudicationService(
	st *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	classifier engine.Classifier,
	policy config.PolicyConfig,
) *AdjudicationService {
	engineCfg := engine.Config{
		ReviewThreshold: policy.ReviewThreshold,
		FallbackPenalty: policy.FallbackPenalty,
		MaxHops:         policy.MaxHops,
	}
	return &AdjudicationService{
		store:          st,
		redis:          redis,
		eventPublisher: eventPublisher,
		adjudicator:    engine.NewAdjudicator(engineCfg, classifier),
		policy:         policy,
		logger:         util.GetLogger(),
	}
}

// AdjudicateRequest represents one return/refund request to decide.
type AdjudicateRequest struct {
	OrderID      string                 `json:"order_id" binding:"required"`
	GraphVersion string                 `json:"graph_version,omitempty"`
	Items        []models.OrderItemFact `json:"items" binding:"required,min=1"`
}

// Adjudicate runs the full flow: snapshot load, engine evaluation, audit
// persistence, and event publication. Business denials and reviews are
// normal results; only malformed input or an unusable snapshot returns an
// error, and no partial result is ever persisted or published.
func (s *AdjudicationService) Adjudicate(ctx context.Context, req *AdjudicateRequest) (*models.AdjudicationResult, error) {
	ctx, span := util.StartSpan(ctx, "AdjudicationService.Adjudicate")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AdjudicationLatency.Observe(time.Since(start).Seconds())
	}()

	version := req.GraphVersion
	if version == "" {
		version = s.policy.GraphVersion
	}

	snap, err := s.loadSnapshot(ctx, version)
	if err != nil {
		util.AdjudicationsFailedTotal.WithLabelValues("snapshot_unavailable").Inc()
		return nil, fmt.Errorf("snapshot unavailable: %w", err)
	}

	result, err := s.adjudicator.Adjudicate(ctx, req.OrderID, req.Items, snap)
	if err != nil {
		util.AdjudicationsFailedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	util.AdjudicationsTotal.WithLabelValues(result.OverallDecision).Inc()
	for _, v := range result.ItemVerdicts {
		util.ItemVerdictsTotal.WithLabelValues(v.Outcome).Inc()
	}

	if err := s.persistResult(ctx, version, result); err != nil {
		s.logger.Error("Failed to persist adjudication",
			zap.String("order_id", req.OrderID),
			zap.Error(err))
	}

	event := &models.AdjudicationCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAdjudicationCompleted,
			Timestamp: time.Now(),
		},
		OrderID:  result.OrderID,
		Decision: result.OverallDecision,
		Result:   *result,
	}
	if err := s.eventPublisher.PublishAdjudicationCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish AdjudicationCompleted event", zap.Error(err))
	}

	return result, nil
}

// GetAdjudication retrieves the latest persisted result for an order.
func (s *AdjudicationService) GetAdjudication(ctx context.Context, orderID string) (*models.AdjudicationResult, error) {
	rec, err := s.store.GetAdjudicationByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var result models.AdjudicationResult
	if err := json.Unmarshal(rec.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &result, nil
}

// loadSnapshot serves a validated snapshot, preferring the Redis cache and
// falling back to Postgres. The cached payload is the raw serializable form;
// validation runs on every materialization so a corrupt cache entry is
// rejected the same way a corrupt table is.
func (s *AdjudicationService) loadSnapshot(ctx context.Context, version string) (*graph.Snapshot, error) {
	loadStart := time.Now()
	defer func() {
		util.SnapshotLoadLatency.Observe(time.Since(loadStart).Seconds())
	}()

	if payload, err := s.redis.GetSnapshot(ctx, version); err == nil {
		var data graph.SnapshotData
		if err := json.Unmarshal(payload, &data); err == nil {
			if snap, err := graph.NewSnapshot(data); err == nil {
				util.SnapshotCacheHits.Inc()
				return snap, nil
			}
		}
		s.logger.Warn("Cached snapshot unusable, reloading from store",
			zap.String("version", version))
	} else if !redisclient.IsNotFound(err) {
		s.logger.Warn("Snapshot cache read failed, falling back to store",
			zap.String("version", version),
			zap.Error(err))
	}

	util.SnapshotCacheMisses.Inc()

	data, err := s.store.LoadSnapshotData(ctx, version)
	if err != nil {
		return nil, err
	}
	snap, err := graph.NewSnapshot(*data)
	if err != nil {
		return nil, fmt.Errorf("policy graph %q failed validation: %w", version, err)
	}

	if payload, err := json.Marshal(data); err == nil {
		ttl := time.Duration(s.policy.SnapshotTTLSec) * time.Second
		if err := s.redis.SetSnapshot(ctx, version, payload, ttl); err != nil {
			s.logger.Warn("Failed to cache snapshot", zap.Error(err))
		}
	}

	return snap, nil
}

func (s *AdjudicationService) persistResult(ctx context.Context, version string, result *models.AdjudicationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	rec := &models.AdjudicationRecord{
		ID:           uuid.New().String(),
		OrderID:      result.OrderID,
		GraphVersion: version,
		Decision:     result.OverallDecision,
		Confidence:   result.AggregateConfidence,
		Result:       payload,
	}
	return s.store.SaveAdjudication(ctx, rec)
}
