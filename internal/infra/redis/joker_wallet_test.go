package redis

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"wordclash-service/internal/domain"
)

func TestJokerWalletSeedsAndSpends(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	wallet := NewJokerWallet(newClient(mr), 10)
	ctx := context.Background()

	balance, err := wallet.Balance(ctx, "u1")
	if err != nil || balance != 10 {
		t.Fatalf("expected seeded balance 10, got %d (%v)", balance, err)
	}

	if err := wallet.Spend(ctx, "u1", 5); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := wallet.Spend(ctx, "u1", 6); !errors.Is(err, domain.ErrInsufficientJokerPoints) {
		t.Fatalf("expected insufficient points, got %v", err)
	}

	// Failed spend must not eat the balance.
	balance, _ = wallet.Balance(ctx, "u1")
	if balance != 5 {
		t.Fatalf("expected 5 after failed spend, got %d", balance)
	}

	if err := wallet.Grant(ctx, "u1", 2); err != nil {
		t.Fatalf("grant: %v", err)
	}
	balance, _ = wallet.Balance(ctx, "u1")
	if balance != 7 {
		t.Fatalf("expected 7 after grant, got %d", balance)
	}
}
