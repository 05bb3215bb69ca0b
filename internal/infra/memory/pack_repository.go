package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"wordclash-service/internal/domain"
)

// PackLoader fetches question-pack content from a backing store.
type PackLoader interface {
	LoadPack(ctx context.Context, packID string) ([]domain.QuestionItem, error)
}

// PackRepository caches packs with a TTL so starting several rooms on the same
// pack does not hammer the backing store.
type PackRepository struct {
	loader PackLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPack
}

type cachedPack struct {
	items     []domain.QuestionItem
	expiresAt time.Time
}

func NewPackRepository(loader PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPack),
	}
}

func (r *PackRepository) LoadPack(ctx context.Context, packID string) ([]domain.QuestionItem, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[packID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.items, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(packID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[packID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.items, nil
		}
		r.mu.RUnlock()

		items, err := r.loader.LoadPack(ctx, packID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[packID] = cachedPack{
			items:     items,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionItem), nil
}

func (r *PackRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPackLoader serves packs from an in-memory map (tests and the
// no-database demo mode).
type StaticPackLoader struct {
	packs map[string][]domain.QuestionItem
}

func NewStaticPackLoader(packs map[string][]domain.QuestionItem) *StaticPackLoader {
	return &StaticPackLoader{packs: packs}
}

func (l *StaticPackLoader) LoadPack(_ context.Context, packID string) ([]domain.QuestionItem, error) {
	if items, ok := l.packs[packID]; ok {
		return items, nil
	}
	return nil, domain.ErrPackNotFound
}
