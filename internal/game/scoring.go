package game

import (
	"math"
	"time"
)

const (
	basePoints  = 500
	bonusPoints = 500

	// DefaultAnswerBudget is the time window over which the speed bonus decays to zero.
	DefaultAnswerBudget = 20 * time.Second
)

// Score maps an answer outcome to points. Incorrect answers score zero.
// Correct answers earn the base plus a speed bonus that decays linearly from
// full value at zero elapsed time to nothing at the budget. Deterministic:
// no clock reads, safe to call from anywhere.
func Score(correct bool, timeSpent, budget time.Duration) int {
	if !correct {
		return 0
	}
	if budget <= 0 {
		budget = DefaultAnswerBudget
	}
	remaining := 1 - timeSpent.Seconds()/budget.Seconds()
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 1 {
		remaining = 1
	}
	return basePoints + int(math.Round(bonusPoints*remaining))
}
