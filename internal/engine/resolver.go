package engine

import (
	"strings"
	"unicode"

	"return-adjudicator/internal/graph"
)

// CategoryResolver validates a classifier label against the closed category
// taxonomy of a snapshot. The classifier itself is a black box; this component
// only checks its output and applies the deterministic tie-break rule.
type CategoryResolver struct {
	snap *graph.Snapshot
}

// NewCategoryResolver creates a resolver bound to one graph snapshot.
func NewCategoryResolver(snap *graph.Snapshot) *CategoryResolver {
	return &CategoryResolver{snap: snap}
}

// Resolve maps a classifier label to exactly one category id. Resolution is
// deterministic for identical (label, snapshot version) pairs: an exact name
// match wins; otherwise candidates sharing tokens with the label are ranked
// by longest matching taxonomy token, then by lexical order of category id.
// Returns ok=false when the label cannot be placed in the taxonomy.
func (r *CategoryResolver) Resolve(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}

	if cat, ok := r.snap.CategoryByName(label); ok {
		return cat.ID, true
	}

	labelTokens := make(map[string]bool)
	for _, tok := range tokenize(label) {
		labelTokens[tok] = true
	}
	if len(labelTokens) == 0 {
		return "", false
	}

	bestID := ""
	bestLen := 0
	for _, cat := range r.snap.Categories() {
		longest := 0
		for _, tok := range tokenize(cat.Name) {
			if labelTokens[tok] && len(tok) > longest {
				longest = len(tok)
			}
		}
		if longest == 0 {
			continue
		}
		if longest > bestLen || (longest == bestLen && cat.ID < bestID) {
			bestID = cat.ID
			bestLen = longest
		}
	}

	if bestID == "" {
		return "", false
	}
	return bestID, true
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
