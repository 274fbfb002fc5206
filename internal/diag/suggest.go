package diag

import "sort"

// Suggest returns up to max candidate names from pool with the smallest
// Levenshtein distance to name, used for "did you mean?" diagnostics.
// Candidates farther than len(name)/2+1 edits away are dropped as noise.
func Suggest(name string, pool []string, max int) []string {
	type scored struct {
		name string
		dist int
	}
	limit := len(name)/2 + 1
	var candidates []scored
	seen := make(map[string]bool, len(pool))
	for _, cand := range pool {
		if cand == name || seen[cand] {
			continue
		}
		seen[cand] = true
		d := levenshtein(name, cand)
		if d <= limit {
			candidates = append(candidates, scored{cand, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
