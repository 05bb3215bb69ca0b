package memory

import (
	"context"
	"sync"

	"wordclash-service/internal/domain"
)

// RoomStore is the in-memory game.RoomStore used when no Redis is configured.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]domain.RoomSnapshot
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]domain.RoomSnapshot)}
}

func (s *RoomStore) Save(_ context.Context, snap domain.RoomSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[snap.Code] = snap
	return nil
}

func (s *RoomStore) LoadByCode(_ context.Context, code string) (domain.RoomSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.rooms[code]
	if !ok {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	return snap, nil
}

func (s *RoomStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}
