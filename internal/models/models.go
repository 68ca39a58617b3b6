package models

import "time"

// Node kinds in the policy knowledge graph
const (
	NodeProductCategory = "ProductCategory"
	NodeReturnWindow    = "ReturnWindow"
	NodeRestockingFee   = "RestockingFee"
	NodeRestriction     = "Restriction"
	NodeCondition       = "Condition"
	NodeMembershipTier  = "MembershipTier"
)

// Edge kinds in the policy knowledge graph
const (
	EdgeHasWindow      = "HAS_WINDOW"
	EdgeHasFee         = "HAS_FEE"
	EdgeHasRestriction = "HAS_RESTRICTION"
	EdgeRequires       = "REQUIRES"
	EdgeExtendedFor    = "EXTENDED_FOR"
	EdgeWaivedIf       = "WAIVED_IF"
	EdgeWaivedFor      = "WAIVED_FOR"
	EdgeAppliesTo      = "APPLIES_TO"
)

// Fee kinds
const (
	FeeKindFlatAmount     = "flat_amount"
	FeeKindPercentOfPrice = "percent_of_price"
)

// Restriction kinds
const (
	RestrictionNonreturnable         = "nonreturnable"
	RestrictionNonreturnableIfOpened = "nonreturnable_if_opened"
	RestrictionHeavyItem             = "heavy_item"
	RestrictionHazardous             = "hazardous"
	RestrictionFinalSale             = "final_sale"
)

// Item conditions reported by the customer / image-analysis pipeline
const (
	ItemConditionUnopened         = "unopened"
	ItemConditionOpenedLikeNew    = "opened_like_new"
	ItemConditionDamagedDefective = "damaged_defective"
	ItemConditionUsed             = "used"
)

// Condition predicates evaluated against order-item facts
const (
	PredicateUnopened        = "item_unopened"
	PredicateLikeNew         = "item_like_new"
	PredicateDefectConfirmed = "defect_confirmed"
)

// Item verdict outcomes
const (
	OutcomeEligible        = "eligible"
	OutcomeIneligible      = "ineligible"
	OutcomeEligibleWithFee = "eligible_with_fee"
)

// Order-level decisions
const (
	DecisionApproved    = "APPROVED"
	DecisionDenied      = "DENIED"
	DecisionPartial     = "PARTIAL"
	DecisionNeedsReview = "NEEDS_REVIEW"
)

// Verdict reason codes
const (
	ReasonWithinWindow    = "within_window"
	ReasonWindowExpired   = "window_expired"
	ReasonDefectOverride  = "defect_override"
	ReasonRestockingFee   = "restocking_fee"
	ReasonNoWindowDefined = "no_window_defined"
)

// Citation links a decision clause back to the policy source text through
// the graph node or edge that carried it.
type Citation struct {
	Ref        string `json:"ref"`
	DocumentID string `json:"document_id"`
	Anchor     string `json:"anchor,omitempty"`
	Inherited  bool   `json:"inherited,omitempty"`
}

// ProductCategory is a taxonomy node. ParentID is empty for the taxonomy root.
type ProductCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// ReturnWindow defines how many days after purchase a return is accepted.
// ExtendedDays, when set, must be >= StandardDays; the tier or condition that
// unlocks it is attached via an EXTENDED_FOR edge.
type ReturnWindow struct {
	ID           string   `json:"id"`
	StandardDays int      `json:"standard_days"`
	ExtendedDays *int     `json:"extended_days,omitempty"`
	Citation     Citation `json:"citation"`
}

// RestockingFee is charged on otherwise-eligible returns unless waived.
// Waiver conditions arrive via WAIVED_IF edges, waiver tiers via WAIVED_FOR.
type RestockingFee struct {
	ID       string   `json:"id"`
	FeeKind  string   `json:"fee_kind"`
	Value    float64  `json:"value"`
	Citation Citation `json:"citation"`
}

// Restriction blocks or gates returns for a category.
type Restriction struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Citation    Citation `json:"citation"`
}

// Condition is a named boolean predicate over order-item facts.
type Condition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Predicate string   `json:"predicate"`
	Citation  Citation `json:"citation"`
}

// MembershipTier carries an ordering rank for "at least tier X" comparisons.
type MembershipTier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// Edge is a typed relationship between two graph nodes.
type Edge struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Citation *Citation `json:"citation,omitempty"`
}

// OrderItemFact is the engine's per-item input. Constructed per request,
// never persisted by the engine.
type OrderItemFact struct {
	SKU             string    `json:"sku"`
	CategoryHint    string    `json:"category_hint"`
	PurchaseDate    time.Time `json:"purchase_date"`
	RequestDate     time.Time `json:"request_date"`
	UnitPrice       int64     `json:"unit_price"`
	Quantity        int       `json:"quantity"`
	ItemCondition   string    `json:"item_condition"`
	DefectConfirmed bool      `json:"defect_confirmed"`
	MembershipTier  string    `json:"membership_tier"`
}

// ItemVerdict is the resolver's output for one line item.
type ItemVerdict struct {
	SKU        string     `json:"sku"`
	Outcome    string     `json:"outcome"`
	FeeAmount  *int64     `json:"fee_amount,omitempty"`
	ReasonCode string     `json:"reason_code"`
	Citations  []Citation `json:"citations"`
	Confidence float64    `json:"confidence"`
}

// AdjudicationResult is the engine's sole output contract, consumed by the
// downstream explanation generator.
type AdjudicationResult struct {
	OrderID             string                 `json:"order_id"`
	OverallDecision     string                 `json:"overall_decision"`
	ItemVerdicts        map[string]ItemVerdict `json:"item_verdicts"`
	AggregateConfidence float64                `json:"aggregate_confidence"`
	Citations           []Citation             `json:"citations"`
}

// AdjudicationRecord is the persisted audit row for one adjudication.
type AdjudicationRecord struct {
	ID           string    `db:"id" json:"id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	GraphVersion string    `db:"graph_version" json:"graph_version"`
	Decision     string    `db:"decision" json:"decision"`
	Confidence   float64   `db:"confidence" json:"confidence"`
	Result       []byte    `db:"result" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PolicyNodeRow is the raw storage shape of a graph node.
type PolicyNodeRow struct {
	ID         string `db:"id"`
	Kind       string `db:"kind"`
	Props      []byte `db:"props"`
	DocumentID string `db:"document_id"`
	Anchor     string `db:"anchor"`
}

// PolicyEdgeRow is the raw storage shape of a graph edge. DocumentID and
// Anchor are empty for structural edges with no policy text of their own.
type PolicyEdgeRow struct {
	ID         string `db:"id"`
	Kind       string `db:"kind"`
	FromID     string `db:"from_id"`
	ToID       string `db:"to_id"`
	DocumentID string `db:"document_id"`
	Anchor     string `db:"anchor"`
}
