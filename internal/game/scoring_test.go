package game

import (
	"testing"
	"time"
)

func TestScoreIncorrectIsZero(t *testing.T) {
	for _, spent := range []time.Duration{0, 5 * time.Second, time.Minute} {
		if got := Score(false, spent, DefaultAnswerBudget); got != 0 {
			t.Fatalf("incorrect answer at %v scored %d, want 0", spent, got)
		}
	}
}

func TestScoreSpeedBonus(t *testing.T) {
	cases := []struct {
		spent time.Duration
		want  int
	}{
		{0, 1000},
		{5 * time.Second, 875},
		{10 * time.Second, 750},
		{20 * time.Second, 500},
		{45 * time.Second, 500}, // bonus never goes negative
	}
	for _, tc := range cases {
		if got := Score(true, tc.spent, 20*time.Second); got != tc.want {
			t.Fatalf("Score(true, %v) = %d, want %d", tc.spent, got, tc.want)
		}
	}
}

func TestScoreMonotoneInTimeSpent(t *testing.T) {
	prev := Score(true, 0, DefaultAnswerBudget)
	for spent := time.Second; spent <= 30*time.Second; spent += time.Second {
		got := Score(true, spent, DefaultAnswerBudget)
		if got > prev {
			t.Fatalf("score increased from %d to %d at %v", prev, got, spent)
		}
		if got < 0 {
			t.Fatalf("negative score %d at %v", got, spent)
		}
		prev = got
	}
}

func TestScoreDeterministic(t *testing.T) {
	a := Score(true, 7*time.Second, DefaultAnswerBudget)
	b := Score(true, 7*time.Second, DefaultAnswerBudget)
	if a != b {
		t.Fatalf("score not deterministic: %d vs %d", a, b)
	}
}

func TestScoreZeroBudgetFallsBack(t *testing.T) {
	if got := Score(true, 0, 0); got != 1000 {
		t.Fatalf("zero budget at t=0 scored %d, want 1000", got)
	}
}

func TestScoreNegativeTimeClamped(t *testing.T) {
	if got := Score(true, -time.Second, DefaultAnswerBudget); got != 1000 {
		t.Fatalf("negative timeSpent scored %d, want 1000", got)
	}
}
