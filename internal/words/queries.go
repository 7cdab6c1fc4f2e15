package words

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
)

// Pattern returns the sorted solutions containing a match of expr.
// Matching is case-insensitive.
func (l *List) Pattern(expr string) ([]string, error) {
	re, err := regexp.Compile("(?i)(" + expr + ")")
	if err != nil {
		return nil, fmt.Errorf("words: bad pattern: %w", err)
	}
	return l.matching(re.MatchString), nil
}

// StartsWith returns the sorted solutions beginning with prefix.
func (l *List) StartsWith(prefix string) []string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	return l.matching(func(w string) bool { return strings.HasPrefix(w, prefix) })
}

// EndsWith returns the sorted solutions ending with suffix.
func (l *List) EndsWith(suffix string) []string {
	suffix = strings.ToUpper(strings.TrimSpace(suffix))
	return l.matching(func(w string) bool { return strings.HasSuffix(w, suffix) })
}

// Random samples n distinct solutions. r may be nil to use the global source.
func (l *List) Random(n int, r *rand.Rand) []string {
	n = min(max(n, 0), len(l.Solutions))
	var perm []int
	if r != nil {
		perm = r.Perm(len(l.Solutions))
	} else {
		perm = rand.Perm(len(l.Solutions))
	}
	out := make([]string, n)
	for i := range out {
		out[i] = l.Solutions[perm[i]]
	}
	return out
}

func (l *List) matching(keep func(string) bool) []string {
	var out []string
	for _, w := range l.Solutions {
		if keep(w) {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

func sortScores(s []WordScore) {
	slices.SortStableFunc(s, func(a, b WordScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Word, b.Word)
	})
}
