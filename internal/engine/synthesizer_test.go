package engine

import (
	"testing"

	"return-adjudicator/internal/models"

	"github.com/stretchr/testify/assert"
)

func verdict(outcome string, confidence float64) models.ItemVerdict {
	return models.ItemVerdict{Outcome: outcome, Confidence: confidence}
}

func TestSynthesizeOutcomeMix(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		verdicts []models.ItemVerdict
		decision string
	}{
		{
			name:     "all eligible",
			verdicts: []models.ItemVerdict{verdict(models.OutcomeEligible, 1), verdict(models.OutcomeEligible, 0.9)},
			decision: models.DecisionApproved,
		},
		{
			name:     "eligible with fee still approves",
			verdicts: []models.ItemVerdict{verdict(models.OutcomeEligible, 1), verdict(models.OutcomeEligibleWithFee, 1)},
			decision: models.DecisionApproved,
		},
		{
			name:     "all ineligible",
			verdicts: []models.ItemVerdict{verdict(models.OutcomeIneligible, 1), verdict(models.OutcomeIneligible, 1)},
			decision: models.DecisionDenied,
		},
		{
			name:     "mixed",
			verdicts: []models.ItemVerdict{verdict(models.OutcomeEligible, 1), verdict(models.OutcomeIneligible, 1)},
			decision: models.DecisionPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, _ := Synthesize(cfg, tt.verdicts)
			assert.Equal(t, tt.decision, decision)
		})
	}
}

func TestSynthesizeAggregateIsMinimum(t *testing.T) {
	verdicts := []models.ItemVerdict{
		verdict(models.OutcomeEligible, 1.0),
		verdict(models.OutcomeEligible, 0.7),
		verdict(models.OutcomeEligible, 0.9),
	}
	_, aggregate := Synthesize(DefaultConfig(), verdicts)
	assert.InDelta(t, 0.7, aggregate, 1e-9)
}

func TestSynthesizeLowConfidenceForcesReview(t *testing.T) {
	cfg := DefaultConfig()

	// One 0.49 item drags an otherwise clean approval into review.
	verdicts := []models.ItemVerdict{
		verdict(models.OutcomeEligible, 1.0),
		verdict(models.OutcomeEligible, 0.49),
	}
	decision, aggregate := Synthesize(cfg, verdicts)
	assert.Equal(t, models.DecisionNeedsReview, decision)
	assert.InDelta(t, 0.49, aggregate, 1e-9)

	// Same for a clean denial: escalation beats the outcome rule.
	verdicts = []models.ItemVerdict{verdict(models.OutcomeIneligible, 0.2)}
	decision, _ = Synthesize(cfg, verdicts)
	assert.Equal(t, models.DecisionNeedsReview, decision)
}

func TestSynthesizeThresholdConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReviewThreshold = 0.3

	verdicts := []models.ItemVerdict{verdict(models.OutcomeEligible, 0.49)}
	decision, _ := Synthesize(cfg, verdicts)
	assert.Equal(t, models.DecisionApproved, decision, "0.49 clears a 0.3 threshold")
}
