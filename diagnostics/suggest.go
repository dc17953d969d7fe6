package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// Nearest returns up to limit candidates within maxDistance edits of miss,
// closest first. A limit of zero or less returns every match.
func Nearest(miss string, candidates []string, limit int, maxDistance int) []string {
	type cand struct {
		s string
		d int
	}
	seen := make(map[string]bool, len(candidates))
	cands := make([]cand, 0, len(candidates))
	for _, c := range candidates {
		if c == miss || seen[c] {
			continue
		}
		seen[c] = true
		if d := Distance(miss, c); d <= maxDistance {
			cands = append(cands, cand{s: c, d: d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].d != cands[j].d {
			return cands[i].d < cands[j].d
		}
		return cands[i].s < cands[j].s
	})
	if limit <= 0 || limit > len(cands) {
		limit = len(cands)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, cands[i].s)
	}
	return out
}

// Distance is the Levenshtein distance between a and b.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

// DidYouMean formats suggestions as a hint, or returns "" when there are none.
func DidYouMean(suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Did you mean %q?", suggestions[0])
	default:
		return fmt.Sprintf("Did you mean one of: %s?", QuoteJoin(suggestions))
	}
}

// QuoteJoin quotes and joins strings
func QuoteJoin(s []string) string {
	quoted := make([]string, len(s))
	for i := range s {
		quoted[i] = fmt.Sprintf("%q", s[i])
	}
	return strings.Join(quoted, ", ")
}
