package engine

import (
	"testing"

	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func cite(ref string) models.Citation {
	return models.Citation{Ref: ref, DocumentID: "combined_policy.md", Anchor: "sec-" + ref}
}

// newTestSnapshot builds a small but representative policy graph:
//
//	Most products (root, 15-day window)
//	├── Electronics (15-day window, extended 60 for Plus)
//	│   ├── Electronics/Smartphones (own 15-day window, extended 30 for Plus)
//	│   └── Gaming Consoles (no own rules, inherits Electronics)
//	├── Drones (30-day window, 15% restocking fee, waived if unopened/defect/Total)
//	├── Projectors (flat restocking fee, window inherited from root)
//	├── Trading Cards (nonreturnable)
//	└── Software (nonreturnable if opened)
func newTestSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()

	data := graph.SnapshotData{
		Version: "v-test",
		Categories: []models.ProductCategory{
			{ID: "cat-most", Name: "Most products"},
			{ID: "cat-electronics", Name: "Electronics", ParentID: "cat-most"},
			{ID: "cat-smartphones", Name: "Electronics/Smartphones", ParentID: "cat-electronics"},
			{ID: "cat-gaming", Name: "Gaming Consoles", ParentID: "cat-electronics"},
			{ID: "cat-drones", Name: "Drones", ParentID: "cat-most"},
			{ID: "cat-projectors", Name: "Projectors", ParentID: "cat-most"},
			{ID: "cat-cards", Name: "Trading Cards", ParentID: "cat-most"},
			{ID: "cat-software", Name: "Software", ParentID: "cat-most"},
		},
		Windows: []models.ReturnWindow{
			{ID: "w-most", StandardDays: 15, Citation: cite("w-most")},
			{ID: "w-elec", StandardDays: 15, ExtendedDays: intPtr(60), Citation: cite("w-elec")},
			{ID: "w-phone", StandardDays: 15, ExtendedDays: intPtr(30), Citation: cite("w-phone")},
			{ID: "w-drone", StandardDays: 30, Citation: cite("w-drone")},
		},
		Fees: []models.RestockingFee{
			{ID: "fee-drone", FeeKind: models.FeeKindPercentOfPrice, Value: 15, Citation: cite("fee-drone")},
			{ID: "fee-projector", FeeKind: models.FeeKindFlatAmount, Value: 2500, Citation: cite("fee-projector")},
		},
		Restrictions: []models.Restriction{
			{ID: "res-cards", Kind: models.RestrictionNonreturnable, Description: "Trading cards are final", Citation: cite("res-cards")},
			{ID: "res-software", Kind: models.RestrictionNonreturnableIfOpened, Description: "Opened software", Citation: cite("res-software")},
		},
		Conditions: []models.Condition{
			{ID: "cond-unopened", Name: "Unopened", Predicate: models.PredicateUnopened, Citation: cite("cond-unopened")},
			{ID: "cond-defect", Name: "Damaged, defective, or incorrect", Predicate: models.PredicateDefectConfirmed, Citation: cite("cond-defect")},
		},
		Tiers: []models.MembershipTier{
			{ID: "tier-standard", Name: "Standard", Rank: 0},
			{ID: "tier-plus", Name: "Plus", Rank: 1},
			{ID: "tier-total", Name: "Total", Rank: 2},
		},
		Edges: []models.Edge{
			{ID: "e01", Kind: models.EdgeHasWindow, From: "cat-most", To: "w-most"},
			{ID: "e02", Kind: models.EdgeHasWindow, From: "cat-electronics", To: "w-elec"},
			{ID: "e03", Kind: models.EdgeExtendedFor, From: "w-elec", To: "tier-plus"},
			{ID: "e04", Kind: models.EdgeHasWindow, From: "cat-smartphones", To: "w-phone"},
			{ID: "e05", Kind: models.EdgeExtendedFor, From: "w-phone", To: "tier-plus"},
			{ID: "e06", Kind: models.EdgeHasWindow, From: "cat-drones", To: "w-drone"},
			{ID: "e07", Kind: models.EdgeHasFee, From: "cat-drones", To: "fee-drone"},
			{ID: "e08", Kind: models.EdgeWaivedIf, From: "fee-drone", To: "cond-unopened"},
			{ID: "e09", Kind: models.EdgeWaivedIf, From: "fee-drone", To: "cond-defect"},
			{ID: "e10", Kind: models.EdgeWaivedFor, From: "fee-drone", To: "tier-total"},
			{ID: "e11", Kind: models.EdgeHasFee, From: "cat-projectors", To: "fee-projector"},
			{ID: "e12", Kind: models.EdgeHasRestriction, From: "cat-cards", To: "res-cards"},
			{ID: "e13", Kind: models.EdgeHasRestriction, From: "cat-software", To: "res-software"},
		},
	}

	snap, err := graph.NewSnapshot(data)
	require.NoError(t, err)
	return snap
}
