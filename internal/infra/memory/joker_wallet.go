package memory

import (
	"context"
	"sync"

	"wordclash-service/internal/domain"
)

// JokerWallet keeps joker-point balances in memory. Every user starts at the
// configured balance on first touch.
type JokerWallet struct {
	starting int
	mu       sync.Mutex
	balances map[string]int
}

func NewJokerWallet(starting int) *JokerWallet {
	return &JokerWallet{
		starting: starting,
		balances: make(map[string]int),
	}
}

func (w *JokerWallet) Balance(_ context.Context, userID string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceLocked(userID), nil
}

func (w *JokerWallet) Spend(_ context.Context, userID string, cost int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	balance := w.balanceLocked(userID)
	if balance < cost {
		return domain.ErrInsufficientJokerPoints
	}
	w.balances[userID] = balance - cost
	return nil
}

// Grant adds points, e.g. as a reward outside the game core.
func (w *JokerWallet) Grant(_ context.Context, userID string, points int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[userID] = w.balanceLocked(userID) + points
	return nil
}

func (w *JokerWallet) balanceLocked(userID string) int {
	if balance, ok := w.balances[userID]; ok {
		return balance
	}
	w.balances[userID] = w.starting
	return w.starting
}
