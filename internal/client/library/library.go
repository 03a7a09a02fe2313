// Package library keeps the command-line client's card collection on disk
// and talks to the SolForge server on its behalf.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/atinyakov/SolForge/internal/models"
)

// ErrCardNotFound is returned when the library has no card with the id.
var ErrCardNotFound = errors.New("card not found in library")

// Library is a JSON file of cards keyed by id.
type Library struct {
	path string

	mu    sync.Mutex
	cards map[string]models.Card
}

type libraryFile struct {
	Cards []models.Card `json:"cards"`
}

// Open loads the library at path. A missing file yields an empty library.
func Open(path string) (*Library, error) {
	l := &Library{path: path, cards: make(map[string]models.Card)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}

	var f libraryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, c := range f.Cards {
		l.cards[c.ID] = c
	}
	return l, nil
}

// Save writes the library back to disk.
func (l *Library) Save() error {
	l.mu.Lock()
	f := libraryFile{Cards: l.sorted()}
	l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}

// Put stores card under its id, replacing any previous version.
func (l *Library) Put(card models.Card) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cards[card.ID] = card
}

// Get returns the card stored under id.
func (l *Library) Get(id string) (models.Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.cards[id]
	if !ok {
		return models.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return c, nil
}

// List returns all cards ordered by id.
func (l *Library) List() []models.Card {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sorted()
}

func (l *Library) sorted() []models.Card {
	out := make([]models.Card, 0, len(l.cards))
	for _, c := range l.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
