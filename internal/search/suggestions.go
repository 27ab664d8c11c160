package search

import "strings"

// CommonTerms are offered as suggestions whenever they contain the query
var CommonTerms = []string{
	"customer support",
	"content writing",
	"data analysis",
	"lead generation",
	"code review",
	"social media",
	"email automation",
	"seo optimization",
	"translation",
	"research assistant",
}

// Suggest returns up to MaxSuggestions distinct terms containing query,
// drawn from agent names, then categories, then CommonTerms. Matching and
// deduplication ignore case. An empty query suggests nothing.
func Suggest(query string, names, categories []string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	if q == "" {
		return out
	}

	seen := map[string]bool{}
	add := func(candidates []string) {
		for _, c := range candidates {
			if len(out) >= MaxSuggestions {
				return
			}
			key := strings.ToLower(strings.TrimSpace(c))
			if key == "" || seen[key] || !strings.Contains(key, q) {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}

	add(names)
	add(categories)
	add(CommonTerms)
	return out
}
