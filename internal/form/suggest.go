package form

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"budgetplanner/internal/core"
)

// Categories lists the default categories followed by any other non-empty
// category already used, in first-seen order.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(core.DefaultCategories))
	add := func(c string) {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	for _, c := range core.DefaultCategories {
		add(c)
	}
	for _, t := range txs {
		add(t.Category)
	}
	return out
}

// SuggestCategory returns the known category closest to input when input
// looks like a typo of it: a case-insensitive match, a prefix, or an edit
// distance of at most a third of the input length (minimum 1).
func SuggestCategory(input string, known []string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return "", false
	}

	best, bestDist := "", -1
	for _, k := range known {
		kl := strings.ToLower(k)
		if kl == q {
			return k, true
		}
		if strings.HasPrefix(kl, q) {
			return k, true
		}
		d := levenshtein.ComputeDistance(q, kl)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}

	limit := max(1, len([]rune(q))/3)
	if bestDist >= 0 && bestDist <= limit {
		return best, true
	}
	return "", false
}
