package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"wordclash-service/internal/domain"
)

func TestPackRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		PackLoader: NewStaticPackLoader(map[string][]domain.QuestionItem{
			"basics": samplePack(),
		}),
	}
	repo := NewPackRepository(loader, time.Minute)

	if _, err := repo.LoadPack(context.Background(), "basics"); err != nil {
		t.Fatalf("load pack: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.LoadPack(context.Background(), "basics"); err != nil {
		t.Fatalf("load pack 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestPackRepositoryUnknownPack(t *testing.T) {
	repo := NewPackRepository(NewStaticPackLoader(nil), time.Minute)
	if _, err := repo.LoadPack(context.Background(), "missing"); !errors.Is(err, domain.ErrPackNotFound) {
		t.Fatalf("expected pack not found, got %v", err)
	}
}

type countingLoader struct {
	PackLoader
	calls int
}

func (l *countingLoader) LoadPack(ctx context.Context, packID string) ([]domain.QuestionItem, error) {
	l.calls++
	return l.PackLoader.LoadPack(ctx, packID)
}

func samplePack() []domain.QuestionItem {
	return []domain.QuestionItem{
		{ID: "b1", PackID: "basics", Prompt: "the house", Answer: "das Haus"},
		{ID: "b2", PackID: "basics", Prompt: "the tree", Answer: "der Baum"},
	}
}
