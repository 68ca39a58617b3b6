package engine

import (
	"return-adjudicator/internal/graph"
	"return-adjudicator/internal/models"
)

// WindowRule is a ReturnWindow reachable from a category, with the extension
// modifiers one hop beyond it and the citations gathered along the path.
type WindowRule struct {
	Window              models.ReturnWindow
	ExtensionTiers      []models.MembershipTier
	ExtensionConditions []models.Condition
	Inherited           bool
	Citations           []models.Citation
}

// FeeRule is a RestockingFee with its waiver modifiers.
type FeeRule struct {
	Fee              models.RestockingFee
	WaiverConditions []models.Condition
	WaiverTiers      []models.MembershipTier
	Inherited        bool
	Citations        []models.Citation
}

// RestrictionRule is a Restriction with the conditions that gate it.
type RestrictionRule struct {
	Restriction models.Restriction
	Triggers    []models.Condition
	Inherited   bool
	Citations   []models.Citation
}

// RuleSet is everything the traversal found for one category. An empty
// Windows slice means no return window exists anywhere in the ancestor
// chain; the rule resolver treats that as ineligible pending review, never
// as an implicit allow.
type RuleSet struct {
	CategoryID string
	Windows    []WindowRule
	Fees       []FeeRule
	Restrictions []RestrictionRule
}

// Traverser collects policy rules reachable from a category within a bounded
// number of hops. Each rule kind falls back to the nearest ancestor that
// defines it independently of the others, so a child's own window is never
// mixed with a sibling level's fee.
type Traverser struct {
	snap    *graph.Snapshot
	maxHops int
}

// NewTraverser creates a traverser over one snapshot. maxHops bounds the
// edge path length (category -> rule node -> modifier node is 2 hops deep,
// so the default of 3 leaves headroom for schema growth).
func NewTraverser(snap *graph.Snapshot, maxHops int) *Traverser {
	if maxHops <= 0 {
		maxHops = 3
	}
	return &Traverser{snap: snap, maxHops: maxHops}
}

// Collect gathers the rule set for a category. Rules found on an ancestor
// (because the category itself has none of that kind) are tagged Inherited,
// and so are their citations, keeping the fallback visible in provenance.
func (t *Traverser) Collect(categoryID string) *RuleSet {
	rs := &RuleSet{CategoryID: categoryID}

	rs.Windows = t.collectWindows(categoryID)
	rs.Fees = t.collectFees(categoryID)
	rs.Restrictions = t.collectRestrictions(categoryID)

	return rs
}

// ancestorChain returns the category and its ancestors, nearest first. The
// schema is designed acyclic but a malformed parent loop must not hang the
// traversal, so visited ids are never revisited.
func (t *Traverser) ancestorChain(categoryID string) []string {
	var chain []string
	seen := make(map[string]bool)
	for id := categoryID; id != "" && !seen[id]; {
		cat, ok := t.snap.Category(id)
		if !ok {
			break
		}
		seen[id] = true
		chain = append(chain, id)
		id = cat.ParentID
	}
	return chain
}

func (t *Traverser) collectWindows(categoryID string) []WindowRule {
	for level, catID := range t.ancestorChain(categoryID) {
		inherited := level > 0
		var rules []WindowRule
		for _, e := range t.snap.OutEdges(catID, models.EdgeHasWindow) {
			w, ok := t.snap.Window(e.To)
			if !ok {
				continue
			}
			rule := WindowRule{Window: w, Inherited: inherited}
			rule.Citations = appendCitations(rule.Citations, inherited, e.Citation, &w.Citation)
			if t.maxHops >= 2 {
				visited := map[string]bool{catID: true, w.ID: true}
				for _, ext := range t.snap.OutEdges(w.ID, models.EdgeExtendedFor) {
					if visited[ext.To] {
						continue
					}
					visited[ext.To] = true
					if tier, ok := t.snap.Tier(ext.To); ok {
						rule.ExtensionTiers = append(rule.ExtensionTiers, tier)
						rule.Citations = appendCitations(rule.Citations, inherited, ext.Citation)
					} else if cond, ok := t.snap.Condition(ext.To); ok {
						rule.ExtensionConditions = append(rule.ExtensionConditions, cond)
						rule.Citations = appendCitations(rule.Citations, inherited, ext.Citation)
					}
				}
			}
			rules = append(rules, rule)
		}
		if len(rules) > 0 {
			return rules
		}
	}
	return nil
}

func (t *Traverser) collectFees(categoryID string) []FeeRule {
	for level, catID := range t.ancestorChain(categoryID) {
		inherited := level > 0
		var rules []FeeRule
		for _, e := range t.snap.OutEdges(catID, models.EdgeHasFee) {
			f, ok := t.snap.Fee(e.To)
			if !ok {
				continue
			}
			rule := FeeRule{Fee: f, Inherited: inherited}
			rule.Citations = appendCitations(rule.Citations, inherited, e.Citation, &f.Citation)
			if t.maxHops >= 2 {
				visited := map[string]bool{catID: true, f.ID: true}
				for _, w := range t.snap.OutEdges(f.ID, models.EdgeWaivedIf, models.EdgeWaivedFor) {
					if visited[w.To] {
						continue
					}
					visited[w.To] = true
					if cond, ok := t.snap.Condition(w.To); ok {
						rule.WaiverConditions = append(rule.WaiverConditions, cond)
					} else if tier, ok := t.snap.Tier(w.To); ok {
						rule.WaiverTiers = append(rule.WaiverTiers, tier)
					}
				}
			}
			rules = append(rules, rule)
		}
		if len(rules) > 0 {
			return rules
		}
	}
	return nil
}

func (t *Traverser) collectRestrictions(categoryID string) []RestrictionRule {
	for level, catID := range t.ancestorChain(categoryID) {
		inherited := level > 0
		var rules []RestrictionRule
		for _, e := range t.snap.OutEdges(catID, models.EdgeHasRestriction) {
			r, ok := t.snap.Restriction(e.To)
			if !ok {
				continue
			}
			rule := RestrictionRule{Restriction: r, Inherited: inherited}
			rule.Citations = appendCitations(rule.Citations, inherited, e.Citation, &r.Citation)
			if t.maxHops >= 2 {
				visited := map[string]bool{catID: true, r.ID: true}
				for _, req := range t.snap.OutEdges(r.ID, models.EdgeRequires) {
					if visited[req.To] {
						continue
					}
					visited[req.To] = true
					if cond, ok := t.snap.Condition(req.To); ok {
						rule.Triggers = append(rule.Triggers, cond)
					}
				}
			}
			rules = append(rules, rule)
		}
		if len(rules) > 0 {
			return rules
		}
	}
	return nil
}

// markInherited returns a copy of the rule set with every rule and citation
// tagged as inherited. Used when classification fell back to the taxonomy
// root: nothing in the set is the item's own rule.
func markInherited(rs *RuleSet) *RuleSet {
	out := &RuleSet{CategoryID: rs.CategoryID}
	for _, w := range rs.Windows {
		w.Inherited = true
		w.Citations = inheritCitations(w.Citations)
		out.Windows = append(out.Windows, w)
	}
	for _, f := range rs.Fees {
		f.Inherited = true
		f.Citations = inheritCitations(f.Citations)
		out.Fees = append(out.Fees, f)
	}
	for _, r := range rs.Restrictions {
		r.Inherited = true
		r.Citations = inheritCitations(r.Citations)
		out.Restrictions = append(out.Restrictions, r)
	}
	return out
}

func inheritCitations(cs []models.Citation) []models.Citation {
	out := make([]models.Citation, len(cs))
	for i, c := range cs {
		c.Inherited = true
		out[i] = c
	}
	return out
}

func appendCitations(dst []models.Citation, inherited bool, cs ...*models.Citation) []models.Citation {
	for _, c := range cs {
		if c == nil || c.Ref == "" {
			continue
		}
		cc := *c
		cc.Inherited = inherited
		dst = append(dst, cc)
	}
	return dst
}
