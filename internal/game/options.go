package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// distractorCount is how many wrong options accompany the correct answer.
const distractorCount = 3

// OptionCount is the fixed size of every option set.
const OptionCount = distractorCount + 1

// GenerateOptions builds a shuffled option set of exactly OptionCount entries:
// the correct answer plus up to count distractors drawn from pool. Pool entries
// matching the correct answer (case-insensitively) are dropped first. When the
// pool is too small the set is padded with synthetic filler labels. The final
// order is a fresh shuffle so position never correlates with correctness.
func GenerateOptions(correct string, pool []string, count int) []string {
	if count <= 0 {
		count = distractorCount
	}

	seen := map[string]struct{}{normalizeAnswer(correct): {}}
	candidates := make([]string, 0, len(pool))
	for _, entry := range pool {
		key := normalizeAnswer(entry)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, entry)
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	for i := len(candidates); i < count; i++ {
		candidates = append(candidates, fillerOption(i+1))
	}

	options := append(candidates, correct)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// fillerOption labels a padding slot when the distractor pool is scarce.
func fillerOption(n int) string {
	return fmt.Sprintf("· · · %d", n)
}

// normalizeAnswer is the canonical form used for all answer comparisons:
// whitespace-trimmed and case-folded.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// answersMatch reports whether a submitted answer hits the correct one.
func answersMatch(submitted, correct string) bool {
	return normalizeAnswer(submitted) == normalizeAnswer(correct)
}
