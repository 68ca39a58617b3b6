package engine

import "return-adjudicator/internal/models"

// BuildResult assembles the final evidence bundle. No decision logic lives
// here: it keys verdicts by sku and produces the deduplicated citation
// union. Citations dedupe by node/edge ref, not display text, since the same
// clause is often cited by several items; first-seen ordering is preserved
// so the bundle is byte-stable for identical inputs.
func BuildResult(orderID string, verdicts []models.ItemVerdict, decision string, confidence float64) *models.AdjudicationResult {
	result := &models.AdjudicationResult{
		OrderID:             orderID,
		OverallDecision:     decision,
		ItemVerdicts:        make(map[string]models.ItemVerdict, len(verdicts)),
		AggregateConfidence: confidence,
		Citations:           []models.Citation{},
	}

	seen := make(map[string]bool)
	for _, v := range verdicts {
		result.ItemVerdicts[v.SKU] = v
		for _, c := range v.Citations {
			if seen[c.Ref] {
				continue
			}
			seen[c.Ref] = true
			result.Citations = append(result.Citations, c)
		}
	}
	return result
}
