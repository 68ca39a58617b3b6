package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"
	"return-adjudicator/internal/util"

	"go.uber.org/zap"
)

// Input validation failures. Business outcomes (denials, reviews) are never
// errors; only malformed input or an unusable snapshot fails a request.
var (
	ErrNoItems     = errors.New("adjudication request has no items")
	ErrInvalidItem = errors.New("invalid order item")
	ErrNilSnapshot = errors.New("nil graph snapshot")
)

// Config is the tunable decision policy. The thresholds are deliberately not
// hard-coded constants: review sensitivity is an operational choice.
type Config struct {
	ReviewThreshold float64
	FallbackPenalty float64
	MaxHops         int
}

// DefaultConfig returns the reference policy settings.
func DefaultConfig() Config {
	return Config{
		ReviewThreshold: 0.5,
		FallbackPenalty: 0.3,
		MaxHops:         3,
	}
}

// Classifier maps a free-text item description to a category label. May be
// backed by a language model; the engine treats it as a black box and only
// validates its output against the taxonomy.
type Classifier interface {
	Classify(ctx context.Context, description string) (string, error)
}

// Adjudicator is the engine facade. It holds no mutable state between
// requests; the snapshot is an explicit input so concurrent adjudications
// can never observe each other.
type Adjudicator struct {
	cfg        Config
	classifier Classifier
	logger     *zap.Logger
}

// NewAdjudicator creates an adjudicator. classifier may be nil, in which
// case the item's category hint is used as the label directly.
func NewAdjudicator(cfg Config, classifier Classifier) *Adjudicator {
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = DefaultConfig().MaxHops
	}
	return &Adjudicator{
		cfg:        cfg,
		classifier: classifier,
		logger:     util.GetLogger(),
	}
}

// itemContext pairs an item with its memoized rule set.
type itemContext struct {
	fact       models.OrderItemFact
	rules      *RuleSet
	unresolved bool
}

// Adjudicate resolves every item of one return request against the snapshot
// and synthesizes the order-level decision. Item verdicts are computed
// concurrently; classification and traversal run up front so an order with
// several items in the same category traverses it once.
func (a *Adjudicator) Adjudicate(ctx context.Context, orderID string, items []models.OrderItemFact, snap *graph.Snapshot) (*models.AdjudicationResult, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	resolver := NewCategoryResolver(snap)
	traverser := NewTraverser(snap, a.cfg.MaxHops)
	ruleResolver := NewRuleResolver(a.cfg, snap)

	// Traversal results are pure in (category id, snapshot version), so a
	// per-request cache is safe and avoids repeat walks.
	cache := make(map[string]*RuleSet)
	collect := func(categoryID string) *RuleSet {
		if rs, ok := cache[categoryID]; ok {
			return rs
		}
		rs := traverser.Collect(categoryID)
		cache[categoryID] = rs
		return rs
	}

	contexts := make([]itemContext, len(items))
	for i, fact := range items {
		// Cancellation is coarse-grained: between items, never mid-verdict.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label := a.classify(ctx, fact)
		categoryID, ok := resolver.Resolve(label)
		if ok {
			contexts[i] = itemContext{fact: fact, rules: collect(categoryID)}
			continue
		}

		// Unresolved category: adjudicate against the taxonomy root with
		// every rule tagged inherited, so the compounded penalties push the
		// order below the review threshold instead of failing the request.
		a.logger.Warn("category unresolved, falling back to taxonomy root",
			zap.String("order_id", orderID),
			zap.String("sku", fact.SKU),
			zap.String("label", label))
		root, hasRoot := snap.Root()
		rules := &RuleSet{}
		if hasRoot {
			rules = markInherited(collect(root.ID))
		}
		contexts[i] = itemContext{fact: fact, rules: rules, unresolved: true}
	}

	verdicts := make([]models.ItemVerdict, len(items))
	var wg sync.WaitGroup
	for i := range contexts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ic := contexts[i]
			verdicts[i] = ruleResolver.Resolve(ic.fact, ic.rules, ic.unresolved)
		}(i)
	}
	wg.Wait()

	decision, confidence := Synthesize(a.cfg, verdicts)
	result := BuildResult(orderID, verdicts, decision, confidence)

	a.logger.Info("adjudication complete",
		zap.String("order_id", orderID),
		zap.String("decision", decision),
		zap.Float64("confidence", confidence),
		zap.Int("items", len(items)))

	return result, nil
}

func (a *Adjudicator) classify(ctx context.Context, fact models.OrderItemFact) string {
	if a.classifier == nil {
		return fact.CategoryHint
	}
	label, err := a.classifier.Classify(ctx, fact.CategoryHint)
	if err != nil {
		a.logger.Warn("classifier unavailable, treating category as unresolved",
			zap.String("sku", fact.SKU),
			zap.Error(err))
		return ""
	}
	return label
}

func validateItems(items []models.OrderItemFact) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, it := range items {
		switch {
		case it.SKU == "":
			return fmt.Errorf("%w: empty sku", ErrInvalidItem)
		case it.UnitPrice < 0:
			return fmt.Errorf("%w: sku %s has negative unit price", ErrInvalidItem, it.SKU)
		case it.Quantity <= 0:
			return fmt.Errorf("%w: sku %s has non-positive quantity", ErrInvalidItem, it.SKU)
		case it.RequestDate.Before(it.PurchaseDate):
			return fmt.Errorf("%w: sku %s request date precedes purchase date", ErrInvalidItem, it.SKU)
		}
	}
	return nil
}
