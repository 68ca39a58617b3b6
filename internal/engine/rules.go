package engine

import (
	"math"
	"strings"

	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"
)

// RuleResolver applies the precedence policy to one item's facts and the
// rule set the traversal produced, yielding a single verdict.
//
// Precedence, highest first:
//  1. hard restriction (nonreturnable, final_sale, hazardous)
//  2. nonreturnable_if_opened with a non-unopened item
//  3. return window, with the confirmed-defect override
//  4. restocking fee with waiver matching
type RuleResolver struct {
	cfg  Config
	snap *graph.Snapshot
}

// NewRuleResolver creates a resolver bound to one snapshot.
func NewRuleResolver(cfg Config, snap *graph.Snapshot) *RuleResolver {
	return &RuleResolver{cfg: cfg, snap: snap}
}

// Resolve evaluates one item. unresolved reports that the category resolver
// could not place the item in the taxonomy and the rule set came from the
// taxonomy root instead.
func (r *RuleResolver) Resolve(fact models.OrderItemFact, rules *RuleSet, unresolved bool) models.ItemVerdict {
	v := models.ItemVerdict{SKU: fact.SKU}

	// Penalties compound multiplicatively so confidence can never go
	// negative: one penalty for the unresolved fallback, one per inherited
	// rule that actually fired.
	penalties := 0
	if unresolved {
		penalties++
	}
	finish := func() models.ItemVerdict {
		v.Confidence = math.Pow(1-r.cfg.FallbackPenalty, float64(penalties))
		return v
	}

	// 1. Hard restrictions short-circuit everything else.
	for _, rr := range rules.Restrictions {
		if !isHardRestriction(rr.Restriction.Kind) {
			continue
		}
		if rr.Inherited {
			penalties++
		}
		v.Outcome = models.OutcomeIneligible
		v.ReasonCode = rr.Restriction.Kind
		v.Citations = append(v.Citations, rr.Citations...)
		return finish()
	}

	// 2. Opened-item restriction.
	for _, rr := range rules.Restrictions {
		if rr.Restriction.Kind != models.RestrictionNonreturnableIfOpened {
			continue
		}
		if fact.ItemCondition == models.ItemConditionUnopened {
			continue
		}
		if rr.Inherited {
			penalties++
		}
		v.Outcome = models.OutcomeIneligible
		v.ReasonCode = models.RestrictionNonreturnableIfOpened
		v.Citations = append(v.Citations, rr.Citations...)
		return finish()
	}

	// 3. Return window. No window anywhere in the ancestor chain is missing
	// rule coverage: ineligible pending review, never an implicit allow.
	if len(rules.Windows) == 0 {
		v.Outcome = models.OutcomeIneligible
		v.ReasonCode = models.ReasonNoWindowDefined
		v.Confidence = 0
		return v
	}

	wr := rules.Windows[0]
	if wr.Inherited {
		penalties++
	}
	v.Citations = append(v.Citations, wr.Citations...)

	days := daysElapsed(fact)
	window, extensionCites := r.applicableWindow(wr, fact)
	v.Citations = append(v.Citations, extensionCites...)

	defectOverride := false
	if days > window {
		if !fact.DefectConfirmed {
			v.Outcome = models.OutcomeIneligible
			v.ReasonCode = models.ReasonWindowExpired
			return finish()
		}
		// Confirmed defect bypasses the window check entirely.
		defectOverride = true
	}

	// 4. Fee resolution.
	var feeTotal int64
	feeCharged := false
	for _, fr := range rules.Fees {
		waived, waiverCites := r.feeWaived(fr, fact)
		if waived {
			v.Citations = append(v.Citations, fr.Citations...)
			v.Citations = append(v.Citations, waiverCites...)
			continue
		}
		if fr.Inherited {
			penalties++
		}
		feeCharged = true
		feeTotal += feeAmount(fr.Fee, fact)
		v.Citations = append(v.Citations, fr.Citations...)
	}

	if feeCharged {
		v.Outcome = models.OutcomeEligibleWithFee
		v.ReasonCode = models.ReasonRestockingFee
		v.FeeAmount = &feeTotal
	} else {
		v.Outcome = models.OutcomeEligible
		if defectOverride {
			v.ReasonCode = models.ReasonDefectOverride
		} else {
			v.ReasonCode = models.ReasonWithinWindow
		}
	}
	return finish()
}

// applicableWindow picks extended days when the item's membership tier ranks
// at least as high as a tier the extension is granted for, or when an
// extension condition holds for the item. Citations for the modifier that
// unlocked the extension are returned alongside.
func (r *RuleResolver) applicableWindow(wr WindowRule, fact models.OrderItemFact) (int, []models.Citation) {
	if wr.Window.ExtendedDays == nil {
		return wr.Window.StandardDays, nil
	}

	if factTier, ok := r.snap.TierByName(fact.MembershipTier); ok {
		for _, tier := range wr.ExtensionTiers {
			if factTier.Rank >= tier.Rank {
				return *wr.Window.ExtendedDays, nil
			}
		}
	}
	for _, cond := range wr.ExtensionConditions {
		if conditionHolds(cond, fact) {
			cite := cond.Citation
			cite.Inherited = wr.Inherited
			return *wr.Window.ExtendedDays, []models.Citation{cite}
		}
	}
	return wr.Window.StandardDays, nil
}

// feeWaived reports whether any waiver condition or waiver membership of the
// fee matches the item's facts.
func (r *RuleResolver) feeWaived(fr FeeRule, fact models.OrderItemFact) (bool, []models.Citation) {
	for _, cond := range fr.WaiverConditions {
		if conditionHolds(cond, fact) {
			cite := cond.Citation
			cite.Inherited = fr.Inherited
			return true, []models.Citation{cite}
		}
	}
	for _, tier := range fr.WaiverTiers {
		if strings.EqualFold(tier.Name, fact.MembershipTier) {
			return true, nil
		}
	}
	return false, nil
}

// conditionHolds evaluates a graph Condition predicate against item facts.
// Unknown predicates never hold; gating on a predicate the engine cannot
// evaluate must not silently widen eligibility.
func conditionHolds(c models.Condition, fact models.OrderItemFact) bool {
	switch c.Predicate {
	case models.PredicateUnopened:
		return fact.ItemCondition == models.ItemConditionUnopened
	case models.PredicateLikeNew:
		return fact.ItemCondition == models.ItemConditionUnopened ||
			fact.ItemCondition == models.ItemConditionOpenedLikeNew
	case models.PredicateDefectConfirmed:
		return fact.DefectConfirmed
	default:
		return false
	}
}

func isHardRestriction(kind string) bool {
	switch kind {
	case models.RestrictionNonreturnable, models.RestrictionFinalSale, models.RestrictionHazardous:
		return true
	}
	return false
}

func daysElapsed(fact models.OrderItemFact) int {
	return int(fact.RequestDate.Sub(fact.PurchaseDate).Hours() / 24)
}

// feeAmount computes the charge in minor currency units. Percent fees are
// computed against unit_price x quantity; flat fees carry their value
// directly in minor units.
func feeAmount(fee models.RestockingFee, fact models.OrderItemFact) int64 {
	switch fee.FeeKind {
	case models.FeeKindPercentOfPrice:
		line := float64(fact.UnitPrice) * float64(fact.Quantity)
		return int64(math.Round(fee.Value / 100 * line))
	case models.FeeKindFlatAmount:
		return int64(math.Round(fee.Value))
	}
	return 0
}
