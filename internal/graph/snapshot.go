package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"return-adjudicator/internal/models"
)

// SnapshotData is the serializable form of one policy graph version, as
// produced by the graph store or a cache. It must be internally consistent;
// NewSnapshot rejects partial or contradictory data.
type SnapshotData struct {
	Version      string                   `json:"version"`
	Categories   []models.ProductCategory `json:"categories"`
	Windows      []models.ReturnWindow    `json:"windows"`
	Fees         []models.RestockingFee   `json:"fees"`
	Restrictions []models.Restriction     `json:"restrictions"`
	Conditions   []models.Condition       `json:"conditions"`
	Tiers        []models.MembershipTier  `json:"tiers"`
	Edges        []models.Edge            `json:"edges"`
}

// SnapshotProvider supplies immutable graph snapshots. The engine never
// retries here: if a snapshot cannot be supplied the whole adjudication
// request fails rather than running against partial data.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, version string) (*Snapshot, error)
}

// Snapshot is a read-only, in-memory materialization of one policy graph
// version. All lookups are pure; a snapshot is safe for concurrent use.
type Snapshot struct {
	version      string
	categories   map[string]models.ProductCategory
	windows      map[string]models.ReturnWindow
	fees         map[string]models.RestockingFee
	restrictions map[string]models.Restriction
	conditions   map[string]models.Condition
	tiers        map[string]models.MembershipTier
	out          map[string][]models.Edge
	categoryIDs  []string
	nameIndex    map[string]string
	data         SnapshotData
}

// NewSnapshot builds and validates an immutable snapshot from raw data.
func NewSnapshot(data SnapshotData) (*Snapshot, error) {
	s := &Snapshot{
		version:      data.Version,
		categories:   make(map[string]models.ProductCategory, len(data.Categories)),
		windows:      make(map[string]models.ReturnWindow, len(data.Windows)),
		fees:         make(map[string]models.RestockingFee, len(data.Fees)),
		restrictions: make(map[string]models.Restriction, len(data.Restrictions)),
		conditions:   make(map[string]models.Condition, len(data.Conditions)),
		tiers:        make(map[string]models.MembershipTier, len(data.Tiers)),
		out:          make(map[string][]models.Edge),
		nameIndex:    make(map[string]string, len(data.Categories)),
		data:         data,
	}

	known := make(map[string]bool)
	add := func(id string) error {
		if id == "" {
			return fmt.Errorf("node with empty id")
		}
		if known[id] {
			return fmt.Errorf("duplicate node id %q", id)
		}
		known[id] = true
		return nil
	}

	for _, c := range data.Categories {
		if err := add(c.ID); err != nil {
			return nil, err
		}
		s.categories[c.ID] = c
		s.categoryIDs = append(s.categoryIDs, c.ID)
		s.nameIndex[strings.ToLower(c.Name)] = c.ID
	}
	for _, w := range data.Windows {
		if err := add(w.ID); err != nil {
			return nil, err
		}
		if w.StandardDays < 0 {
			return nil, fmt.Errorf("window %s: negative standard_days", w.ID)
		}
		if w.ExtendedDays != nil && *w.ExtendedDays < w.StandardDays {
			return nil, fmt.Errorf("window %s: extended_days %d < standard_days %d",
				w.ID, *w.ExtendedDays, w.StandardDays)
		}
		if w.Citation.Ref == "" {
			return nil, fmt.Errorf("window %s: missing citation", w.ID)
		}
		s.windows[w.ID] = w
	}
	for _, f := range data.Fees {
		if err := add(f.ID); err != nil {
			return nil, err
		}
		if f.FeeKind != models.FeeKindFlatAmount && f.FeeKind != models.FeeKindPercentOfPrice {
			return nil, fmt.Errorf("fee %s: unknown fee_kind %q", f.ID, f.FeeKind)
		}
		if f.Value < 0 {
			return nil, fmt.Errorf("fee %s: negative value", f.ID)
		}
		if f.Citation.Ref == "" {
			return nil, fmt.Errorf("fee %s: missing citation", f.ID)
		}
		s.fees[f.ID] = f
	}
	for _, r := range data.Restrictions {
		if err := add(r.ID); err != nil {
			return nil, err
		}
		if r.Citation.Ref == "" {
			return nil, fmt.Errorf("restriction %s: missing citation", r.ID)
		}
		s.restrictions[r.ID] = r
	}
	for _, c := range data.Conditions {
		if err := add(c.ID); err != nil {
			return nil, err
		}
		s.conditions[c.ID] = c
	}
	for _, t := range data.Tiers {
		if err := add(t.ID); err != nil {
			return nil, err
		}
		s.tiers[t.ID] = t
	}

	for _, c := range data.Categories {
		if c.ParentID != "" {
			if _, ok := s.categories[c.ParentID]; !ok {
				return nil, fmt.Errorf("category %s: unknown parent %q", c.ID, c.ParentID)
			}
		}
	}

	for _, e := range data.Edges {
		if !known[e.From] {
			return nil, fmt.Errorf("edge %s: unknown source node %q", e.ID, e.From)
		}
		if !known[e.To] {
			return nil, fmt.Errorf("edge %s: unknown target node %q", e.ID, e.To)
		}
		s.out[e.From] = append(s.out[e.From], e)
	}

	// Stable edge order so traversal output is deterministic regardless of
	// the order the store returned rows in.
	for from := range s.out {
		edges := s.out[from]
		sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	}
	sort.Strings(s.categoryIDs)

	return s, nil
}

// Version returns the graph version this snapshot was built from.
func (s *Snapshot) Version() string { return s.version }

// Data returns the raw serializable form, used for cache round-trips.
func (s *Snapshot) Data() SnapshotData { return s.data }

// Category looks up a category node by id.
func (s *Snapshot) Category(id string) (models.ProductCategory, bool) {
	c, ok := s.categories[id]
	return c, ok
}

// CategoryByName resolves a category by display name, case-insensitively.
func (s *Snapshot) CategoryByName(name string) (models.ProductCategory, bool) {
	id, ok := s.nameIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.ProductCategory{}, false
	}
	return s.categories[id], true
}

// Categories returns all category nodes in id order.
func (s *Snapshot) Categories() []models.ProductCategory {
	out := make([]models.ProductCategory, 0, len(s.categoryIDs))
	for _, id := range s.categoryIDs {
		out = append(out, s.categories[id])
	}
	return out
}

// Root returns the taxonomy root: the parentless category with the lowest id.
func (s *Snapshot) Root() (models.ProductCategory, bool) {
	for _, id := range s.categoryIDs {
		if s.categories[id].ParentID == "" {
			return s.categories[id], true
		}
	}
	return models.ProductCategory{}, false
}

// OutEdges returns the outgoing edges of a node, filtered by kind if given.
func (s *Snapshot) OutEdges(nodeID string, kinds ...string) []models.Edge {
	edges := s.out[nodeID]
	if len(kinds) == 0 {
		return edges
	}
	var filtered []models.Edge
	for _, e := range edges {
		for _, k := range kinds {
			if e.Kind == k {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered
}

// Window looks up a return window node by id.
func (s *Snapshot) Window(id string) (models.ReturnWindow, bool) {
	w, ok := s.windows[id]
	return w, ok
}

// Fee looks up a restocking fee node by id.
func (s *Snapshot) Fee(id string) (models.RestockingFee, bool) {
	f, ok := s.fees[id]
	return f, ok
}

// Restriction looks up a restriction node by id.
func (s *Snapshot) Restriction(id string) (models.Restriction, bool) {
	r, ok := s.restrictions[id]
	return r, ok
}

// Condition looks up a condition node by id.
func (s *Snapshot) Condition(id string) (models.Condition, bool) {
	c, ok := s.conditions[id]
	return c, ok
}

// Tier looks up a membership tier node by id.
func (s *Snapshot) Tier(id string) (models.MembershipTier, bool) {
	t, ok := s.tiers[id]
	return t, ok
}

// TierByName resolves a tier by display name, case-insensitively.
func (s *Snapshot) TierByName(name string) (models.MembershipTier, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	var (
		found models.MembershipTier
		ok    bool
	)
	for _, t := range s.tiers {
		if strings.ToLower(t.Name) == needle {
			if !ok || t.ID < found.ID {
				found = t
				ok = true
			}
		}
	}
	return found, ok
}
