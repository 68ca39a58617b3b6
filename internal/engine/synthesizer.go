package engine

import "return-adjudicator/internal/models"

// Synthesize folds per-item verdicts into one order-level decision.
//
// Outcome mix: all eligible (with or without fee) is APPROVED, all
// ineligible is DENIED, anything else is PARTIAL. The aggregate confidence
// is the minimum across items; when it falls below the review threshold the
// decision is forced to NEEDS_REVIEW regardless of the mix — confidence
// escalation always wins over the outcome rule.
func Synthesize(cfg Config, verdicts []models.ItemVerdict) (string, float64) {
	eligible := 0
	ineligible := 0
	aggregate := 1.0

	for _, v := range verdicts {
		switch v.Outcome {
		case models.OutcomeEligible, models.OutcomeEligibleWithFee:
			eligible++
		case models.OutcomeIneligible:
			ineligible++
		}
		if v.Confidence < aggregate {
			aggregate = v.Confidence
		}
	}

	if aggregate < cfg.ReviewThreshold {
		return models.DecisionNeedsReview, aggregate
	}

	switch {
	case ineligible == 0:
		return models.DecisionApproved, aggregate
	case eligible == 0:
		return models.DecisionDenied, aggregate
	default:
		return models.DecisionPartial, aggregate
	}
}
