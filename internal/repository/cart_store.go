package repository

import (
	"context"
	"sync"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// MemoryCartStore keeps the cart in process memory only.
type MemoryCartStore struct {
	mu    sync.Mutex
	lines []models.CartLine
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{}
}

func (s *MemoryCartStore) Load(ctx context.Context) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *MemoryCartStore) Save(ctx context.Context, lines []models.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]models.CartLine, len(lines))
	copy(s.lines, lines)
	return nil
}

func (s *MemoryCartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return nil
}
