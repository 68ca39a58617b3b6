package store

import (
	"context"
	"database/sql"
	"fmt"

	"return-adjudicator/internal/models"
)

// SaveAdjudication persists one adjudication audit record.
func (s *Store) SaveAdjudication(ctx context.Context, rec *models.AdjudicationRecord) error {
	query := `
		INSERT INTO adjudications (id, order_id, graph_version, decision, confidence, result)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return s.db.GetContext(ctx, &rec.CreatedAt, query,
		rec.ID, rec.OrderID, rec.GraphVersion, rec.Decision, rec.Confidence, rec.Result)
}

// GetAdjudicationByOrderID retrieves the most recent adjudication for an order.
func (s *Store) GetAdjudicationByOrderID(ctx context.Context, orderID string) (*models.AdjudicationRecord, error) {
	var rec models.AdjudicationRecord
	err := s.db.GetContext(ctx, &rec,
		"SELECT * FROM adjudications WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1",
		orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("adjudication not found for order: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecentAdjudications returns the latest records for operational review.
func (s *Store) ListRecentAdjudications(ctx context.Context, limit int) ([]models.AdjudicationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []models.AdjudicationRecord
	err := s.db.SelectContext(ctx, &recs,
		"SELECT * FROM adjudications ORDER BY created_at DESC LIMIT $1", limit)
	return recs, err
}
