package store

import (
	"context"
	"encoding/json"
	"fmt"

	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"
)

// LoadSnapshotData reads one policy graph version from the policy_nodes and
// policy_edges tables, materialized offline by the policy compiler pipeline.
// A version that parses but fails graph validation is rejected here, so a
// corrupt graph can never reach the engine.
func (s *Store) LoadSnapshotData(ctx context.Context, version string) (*graph.SnapshotData, error) {
	var nodes []models.PolicyNodeRow
	err := s.db.SelectContext(ctx, &nodes,
		"SELECT id, kind, props, document_id, anchor FROM policy_nodes WHERE graph_version = $1 ORDER BY id",
		version)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy nodes: %w", err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no policy graph found for version %q", version)
	}

	var edges []models.PolicyEdgeRow
	err = s.db.SelectContext(ctx, &edges,
		"SELECT id, kind, from_id, to_id, document_id, anchor FROM policy_edges WHERE graph_version = $1 ORDER BY id",
		version)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy edges: %w", err)
	}

	data := &graph.SnapshotData{Version: version}
	for _, row := range nodes {
		if err := appendNode(data, row); err != nil {
			return nil, err
		}
	}
	for _, row := range edges {
		data.Edges = append(data.Edges, edgeFromRow(row))
	}
	return data, nil
}

// edgeFromRow maps a storage row to a graph edge. Edges annotated with their
// own policy text (a clause that states the relationship, not just the nodes)
// carry a citation; structural edges do not.
func edgeFromRow(row models.PolicyEdgeRow) models.Edge {
	e := models.Edge{
		ID:   row.ID,
		Kind: row.Kind,
		From: row.FromID,
		To:   row.ToID,
	}
	if row.DocumentID != "" {
		e.Citation = &models.Citation{
			Ref:        row.ID,
			DocumentID: row.DocumentID,
			Anchor:     row.Anchor,
		}
	}
	return e
}

// GetSnapshot loads and validates a snapshot. Implements graph.SnapshotProvider.
func (s *Store) GetSnapshot(ctx context.Context, version string) (*graph.Snapshot, error) {
	data, err := s.LoadSnapshotData(ctx, version)
	if err != nil {
		return nil, err
	}
	snap, err := graph.NewSnapshot(*data)
	if err != nil {
		return nil, fmt.Errorf("policy graph %q failed validation: %w", version, err)
	}
	return snap, nil
}

func appendNode(data *graph.SnapshotData, row models.PolicyNodeRow) error {
	citation := models.Citation{
		Ref:        row.ID,
		DocumentID: row.DocumentID,
		Anchor:     row.Anchor,
	}

	switch row.Kind {
	case models.NodeProductCategory:
		var props struct {
			Name     string `json:"name"`
			ParentID string `json:"parent_id"`
		}
		if err := json.Unmarshal(row.Props, &props); err != nil {
			return fmt.Errorf("node %s: bad category props: %w", row.ID, err)
		}
		data.Categories = append(data.Categories, models.ProductCategory{
			ID: row.ID, Name: props.Name, ParentID: props.ParentID,
		})

	case models.NodeReturnWindow:
		var props struct {
			StandardDays int  `json:"standard_days"`
			ExtendedDays *int `json:"extended_days"`
		}
		if err := json.Unmarshal(row.Props, &props); err != nil {
			return fmt.Errorf("node %s: bad window props: %w", row.ID, err)
		}
		data.Windows = append(data.Windows, models.ReturnWindow{
			ID: row.ID, StandardDays: props.StandardDays, ExtendedDays: props.ExtendedDays,
			Citation: citation,
		})

	case models.NodeRestockingFee:
		var props struct {
			FeeKind string  `json:"fee_kind"`
			Value   float64 `json:"value"`
		}
		if err := json.Unmarshal(row.Props, &props); err != nil {
			return fmt.Errorf("node %s: bad fee props: %w", row.ID, err)
		}
		data.Fees = append(data.Fees, models.RestockingFee{
			ID: row.ID, FeeKind: props.FeeKind, Value: props.Value, Citation: citation,
		})

	case models.NodeRestriction:
		var props struct {
			Kind        string `json:"kind"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(row.Props, &props); err != nil {
			return fmt.Errorf("node %s: bad restriction props: %w", row.ID, err)
		}
		data.Restrictions = append(data.Restrictions, models.Restriction{
			ID: row.ID, Kind: props.Kind, Description: props.Description, Citation: citation,
		})

	case models.NodeCondition:
		var props struct {
			Name      string `json:"name"`
			Predicate string `json:"predicate"`
		}
		if err := json.Unmarshal(row.Props, &props); err != nil {
			return fmt.Errorf("node %s: bad condition props: %w", row.ID, err)
		}
		data.Conditions = append(data.Conditions, models.Condition{
			ID: row.ID, Name: props.Name, Predicate: props.Predicate, Citation: citation,
		})

	case models.NodeMembershipTier:
		var props struct {
			Name string `json:"name"`
			Rank int    `json:"rank"`
		}
		if err := json.Unmarshal(row.Props, &props); err != nil {
			return fmt.Errorf("node %s: bad tier props: %w", row.ID, err)
		}
		data.Tiers = append(data.Tiers, models.MembershipTier{
			ID: row.ID, Name: props.Name, Rank: props.Rank,
		})

	default:
		return fmt.Errorf("node %s: unknown kind %q", row.ID, row.Kind)
	}
	return nil
}
