package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wordclash-service/internal/domain"
)

// RoomStore mirrors room snapshots as JSON values in Redis. The engine treats
// it as best effort: a failed save is logged upstream, never fatal.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{client: client, ttl: ttl}
}

func (s *RoomStore) Save(ctx context.Context, snap domain.RoomSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", snap.Code, err)
	}
	return s.client.Set(ctx, s.key(snap.Code), data, s.ttl).Err()
}

func (s *RoomStore) LoadByCode(ctx context.Context, code string) (domain.RoomSnapshot, error) {
	data, err := s.client.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("load room %s: %w", code, err)
	}
	var snap domain.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("unmarshal room %s: %w", code, err)
	}
	return snap, nil
}

func (s *RoomStore) Delete(ctx context.Context, code string) error {
	return s.client.Del(ctx, s.key(code)).Err()
}

func (s *RoomStore) key(code string) string {
	return "room:" + code
}
