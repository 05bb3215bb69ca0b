package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"wordclash-service/internal/domain"
)

// JokerWallet stores joker-point balances in Redis, one counter per user.
// First touch seeds the starting balance with SETNX so concurrent instances
// agree on it.
type JokerWallet struct {
	client   *redis.Client
	starting int
}

func NewJokerWallet(client *redis.Client, starting int) *JokerWallet {
	return &JokerWallet{client: client, starting: starting}
}

func (w *JokerWallet) Balance(ctx context.Context, userID string) (int, error) {
	if err := w.seed(ctx, userID); err != nil {
		return 0, err
	}
	balance, err := w.client.Get(ctx, w.key(userID)).Int()
	if err != nil {
		return 0, fmt.Errorf("joker balance %s: %w", userID, err)
	}
	return balance, nil
}

func (w *JokerWallet) Spend(ctx context.Context, userID string, cost int) error {
	if err := w.seed(ctx, userID); err != nil {
		return err
	}
	remaining, err := w.client.DecrBy(ctx, w.key(userID), int64(cost)).Result()
	if err != nil {
		return fmt.Errorf("joker spend %s: %w", userID, err)
	}
	if remaining < 0 {
		// Went below zero: undo and report the shortfall.
		_ = w.client.IncrBy(ctx, w.key(userID), int64(cost)).Err()
		return domain.ErrInsufficientJokerPoints
	}
	return nil
}

// Grant adds points to a user's balance.
func (w *JokerWallet) Grant(ctx context.Context, userID string, points int) error {
	if err := w.seed(ctx, userID); err != nil {
		return err
	}
	return w.client.IncrBy(ctx, w.key(userID), int64(points)).Err()
}

func (w *JokerWallet) seed(ctx context.Context, userID string) error {
	return w.client.SetNX(ctx, w.key(userID), w.starting, 0).Err()
}

func (w *JokerWallet) key(userID string) string {
	return "joker:balance:" + userID
}
