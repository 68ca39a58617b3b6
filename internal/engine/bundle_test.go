package engine

import (
	"testing"

	"return-adjudicator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResultDedupesCitationsByRef(t *testing.T) {
	verdicts := []models.ItemVerdict{
		{SKU: "sku-1", Outcome: models.OutcomeEligible, Confidence: 1, Citations: []models.Citation{cite("w-most"), cite("fee-drone")}},
		{SKU: "sku-2", Outcome: models.OutcomeEligible, Confidence: 1, Citations: []models.Citation{cite("w-most"), cite("res-cards")}},
	}

	result := BuildResult("order-1", verdicts, models.DecisionApproved, 1)

	require.Len(t, result.Citations, 3)
	// First-seen order across verdicts, duplicates dropped.
	assert.Equal(t, "w-most", result.Citations[0].Ref)
	assert.Equal(t, "fee-drone", result.Citations[1].Ref)
	assert.Equal(t, "res-cards", result.Citations[2].Ref)
}

func TestBuildResultKeysVerdictsBySKU(t *testing.T) {
	verdicts := []models.ItemVerdict{
		{SKU: "sku-a", Outcome: models.OutcomeEligible, Confidence: 1},
		{SKU: "sku-b", Outcome: models.OutcomeIneligible, Confidence: 0.7},
	}

	result := BuildResult("order-1", verdicts, models.DecisionPartial, 0.7)

	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, models.DecisionPartial, result.OverallDecision)
	require.Len(t, result.ItemVerdicts, 2)
	assert.Equal(t, models.OutcomeEligible, result.ItemVerdicts["sku-a"].Outcome)
	assert.Equal(t, models.OutcomeIneligible, result.ItemVerdicts["sku-b"].Outcome)
}

func TestBuildResultEmptyCitationsNotNil(t *testing.T) {
	verdicts := []models.ItemVerdict{{SKU: "sku-1", Outcome: models.OutcomeEligible, Confidence: 1}}
	result := BuildResult("order-1", verdicts, models.DecisionApproved, 1)
	assert.NotNil(t, result.Citations)
	assert.Empty(t, result.Citations)
}
