package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"wordclash-service/internal/domain"
)

func TestRoomStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewRoomStore(newClient(mr), time.Minute)
	ctx := context.Background()

	snap := domain.RoomSnapshot{
		Code:   "ABCDE",
		HostID: "host",
		Status: domain.StatusWaiting,
		Settings: domain.Settings{
			Rounds:  3,
			PackIDs: []string{"basics"},
		},
		Players: []domain.PlayerState{
			{UserID: "host", Username: "Alice"},
		},
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("room:ABCDE") {
		t.Fatalf("expected redis key to be set")
	}

	loaded, err := store.LoadByCode(ctx, "ABCDE")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.HostID != "host" || loaded.Settings.Rounds != 3 || len(loaded.Players) != 1 {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}

	if err := store.Delete(ctx, "ABCDE"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadByCode(ctx, "ABCDE"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
