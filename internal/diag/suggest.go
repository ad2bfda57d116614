package diag

import "sort"

// Suggest returns up to maxHints candidates from known that are close to
// name by edit distance, for "did you mean" hints on SymbolError/
// ContractError diagnostics (§7's hints[] field).
//
// Grounded on the Levenshtein core of the teacher's fuzzy matcher
// (internal/core/fuzzy.go's levenshteinDistance), stripped of the
// AST-query-variation machinery that core no longer has a use for: ESP
// only needs "is this declared name close to what you typed", not query
// rewriting.
func Suggest(name string, known []string, maxHints int) []string {
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	maxDistance := 3
	for _, k := range known {
		d := levenshteinDistance(name, k)
		if d <= maxDistance && d > 0 {
			candidates = append(candidates, scored{k, d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > maxHints {
		candidates = candidates[:maxHints]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = minOf3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
