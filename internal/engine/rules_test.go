package engine

import (
	"testing"
	"time"

	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func itemFact(sku string, daysElapsed int, condition string, defect bool, tier string) models.OrderItemFact {
	return models.OrderItemFact{
		SKU:             sku,
		PurchaseDate:    baseDate,
		RequestDate:     baseDate.Add(time.Duration(daysElapsed) * 24 * time.Hour),
		UnitPrice:       10000,
		Quantity:        1,
		ItemCondition:   condition,
		DefectConfirmed: defect,
		MembershipTier:  tier,
	}
}

func newResolverUnderTest(t *testing.T) (*RuleResolver, *Traverser) {
	snap := newTestSnapshot(t)
	return NewRuleResolver(DefaultConfig(), snap), NewTraverser(snap, 3)
}

func TestHardRestrictionPrecedence(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-cards")

	// Way out of window, worst possible condition: the hard restriction
	// still decides, everything else is irrelevant.
	v := rr.Resolve(itemFact("sku-1", 500, models.ItemConditionUsed, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeIneligible, v.Outcome)
	assert.Equal(t, models.RestrictionNonreturnable, v.ReasonCode)
	assert.Equal(t, 1.0, v.Confidence)
	assert.NotEmpty(t, v.Citations)
}

func TestOpenedRestriction(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-software")

	v := rr.Resolve(itemFact("sku-1", 5, models.ItemConditionOpenedLikeNew, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeIneligible, v.Outcome)
	assert.Equal(t, models.RestrictionNonreturnableIfOpened, v.ReasonCode)

	// Unopened software passes the restriction and lands on the inherited
	// root window.
	v = rr.Resolve(itemFact("sku-2", 5, models.ItemConditionUnopened, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeEligible, v.Outcome)
	assert.Equal(t, models.ReasonWithinWindow, v.ReasonCode)
	assert.InDelta(t, 0.7, v.Confidence, 1e-9)
}

func TestWindowExpired(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-drones")

	v := rr.Resolve(itemFact("sku-1", 40, models.ItemConditionUnopened, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeIneligible, v.Outcome)
	assert.Equal(t, models.ReasonWindowExpired, v.ReasonCode)
}

func TestDefectOverridesExpiredWindow(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-drones")

	// 40 days elapsed against a 30-day window, but the defect is confirmed:
	// never window_expired. The defect condition also waives the fee.
	v := rr.Resolve(itemFact("sku-1", 40, models.ItemConditionDamagedDefective, true, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeEligible, v.Outcome)
	assert.Equal(t, models.ReasonDefectOverride, v.ReasonCode)
	assert.Nil(t, v.FeeAmount)
}

func TestExtendedWindowForTier(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-smartphones")

	// 20 days: past the 15-day standard window, inside the 30-day extension
	// granted at Plus tier and above.
	v := rr.Resolve(itemFact("sku-1", 20, models.ItemConditionUnopened, false, "Plus"), rules, false)
	assert.Equal(t, models.OutcomeEligible, v.Outcome)

	v = rr.Resolve(itemFact("sku-2", 20, models.ItemConditionUnopened, false, "Total"), rules, false)
	assert.Equal(t, models.OutcomeEligible, v.Outcome, "higher rank also qualifies")

	v = rr.Resolve(itemFact("sku-3", 20, models.ItemConditionUnopened, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeIneligible, v.Outcome)
	assert.Equal(t, models.ReasonWindowExpired, v.ReasonCode)
}

func TestPercentFee(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-drones")

	fact := itemFact("sku-1", 10, models.ItemConditionOpenedLikeNew, false, "Standard")
	fact.UnitPrice = 10000
	fact.Quantity = 2

	v := rr.Resolve(fact, rules, false)
	assert.Equal(t, models.OutcomeEligibleWithFee, v.Outcome)
	assert.Equal(t, models.ReasonRestockingFee, v.ReasonCode)
	require.NotNil(t, v.FeeAmount)
	assert.Equal(t, int64(3000), *v.FeeAmount) // 15% of 10000 x 2
}

func TestPercentFeeMonotonic(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-drones")

	var prev int64 = -1
	for _, price := range []int64{100, 5000, 10000, 99999} {
		fact := itemFact("sku-1", 10, models.ItemConditionOpenedLikeNew, false, "Standard")
		fact.UnitPrice = price
		v := rr.Resolve(fact, rules, false)
		require.NotNil(t, v.FeeAmount)
		assert.Greater(t, *v.FeeAmount, prev)
		prev = *v.FeeAmount
	}
}

func TestFeeWaivers(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-drones")

	// Unopened waives via condition.
	v := rr.Resolve(itemFact("sku-1", 10, models.ItemConditionUnopened, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeEligible, v.Outcome)
	assert.Nil(t, v.FeeAmount)

	// Total tier waives via membership, even opened.
	v = rr.Resolve(itemFact("sku-2", 10, models.ItemConditionUsed, false, "Total"), rules, false)
	assert.Equal(t, models.OutcomeEligible, v.Outcome)
	assert.Nil(t, v.FeeAmount)
}

func TestFlatFee(t *testing.T) {
	rr, tr := newResolverUnderTest(t)
	rules := tr.Collect("cat-projectors")

	v := rr.Resolve(itemFact("sku-1", 5, models.ItemConditionOpenedLikeNew, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeEligibleWithFee, v.Outcome)
	require.NotNil(t, v.FeeAmount)
	assert.Equal(t, int64(2500), *v.FeeAmount)
	// The window was inherited from the root, so one penalty applies.
	assert.InDelta(t, 0.7, v.Confidence, 1e-9)
}

func TestUnresolvedPenaltyCompoundsMultiplicatively(t *testing.T) {
	rr, tr := newResolverUnderTest(t)

	// Unresolved category: rules come from the taxonomy root, all tagged
	// inherited. One penalty for unresolved, one for the inherited window:
	// 1.0 x 0.7 x 0.7 = 0.49.
	rules := markInherited(tr.Collect("cat-most"))
	v := rr.Resolve(itemFact("sku-1", 5, models.ItemConditionUnopened, false, "Standard"), rules, true)
	assert.Equal(t, models.OutcomeEligible, v.Outcome)
	assert.InDelta(t, 0.49, v.Confidence, 1e-9)
}

func TestNoWindowDefined(t *testing.T) {
	data := graph.SnapshotData{
		Version:    "v-bare",
		Categories: []models.ProductCategory{{ID: "cat-a", Name: "Alpha"}},
	}
	snap, err := graph.NewSnapshot(data)
	require.NoError(t, err)

	rr := NewRuleResolver(DefaultConfig(), snap)
	rules := NewTraverser(snap, 3).Collect("cat-a")

	v := rr.Resolve(itemFact("sku-1", 5, models.ItemConditionUnopened, false, "Standard"), rules, false)
	assert.Equal(t, models.OutcomeIneligible, v.Outcome)
	assert.Equal(t, models.ReasonNoWindowDefined, v.ReasonCode)
	assert.Zero(t, v.Confidence)
}
