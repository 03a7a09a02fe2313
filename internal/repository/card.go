// Package repository provides card storage backends.
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/atinyakov/SolForge/internal/models"
)

// ErrNotFound is returned when no card is stored under the requested id.
var ErrNotFound = errors.New("card not found")

// MemoryCardRepository keeps cards for the lifetime of the process.
type MemoryCardRepository struct {
	mu    sync.RWMutex
	cards map[string]models.Card
}

// NewMemoryCardRepository returns an empty in-memory store.
func NewMemoryCardRepository() *MemoryCardRepository {
	return &MemoryCardRepository{cards: make(map[string]models.Card)}
}

// Save stores card under its id, last write wins.
func (r *MemoryCardRepository) Save(_ context.Context, card models.Card) error {
	r.mu.Lock()
	r.cards[card.ID] = card
	r.mu.Unlock()
	return nil
}

// Get returns the card stored under id.
func (r *MemoryCardRepository) Get(_ context.Context, id string) (models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[id]
	if !ok {
		return models.Card{}, ErrNotFound
	}
	return c, nil
}

// Len returns the number of stored cards.
func (r *MemoryCardRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}
