package notes

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/notedraft/internal/models"
)

// ErrNoteNotFound is returned when no note has the requested id.
var ErrNoteNotFound = errors.New("note not found")

// Store holds notes for the lifetime of the process. Implementations return
// deep copies so callers never share mutable state with the store.
type Store interface {
	Create(n *models.Note) error
	Get(id string) (*models.Note, error)
	// Update applies fn to the note while holding that note's lock. Changes are
	// kept only when fn returns nil. The updated note is returned.
	Update(id string, fn func(n *models.Note) error) (*models.Note, error)
	Delete(id string) error
	List() []*models.Note
}

type entry struct {
	mu   sync.Mutex
	note *models.Note
}

// MemoryStore is an in-memory Store with one lock per note.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[string]*entry
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]*entry)}
}

func (s *MemoryStore) Create(n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notes[n.ID]; exists {
		return fmt.Errorf("note %q already exists", n.ID)
	}
	s.notes[n.ID] = &entry{note: n.Clone()}
	return nil
}

func (s *MemoryStore) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return e, nil
}

func (s *MemoryStore) Get(id string) (*models.Note, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.note.Clone(), nil
}

func (s *MemoryStore) Update(id string, fn func(n *models.Note) error) (*models.Note, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	working := e.note.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	e.note = working
	return working.Clone(), nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	delete(s.notes, id)
	return nil
}

// List returns every note, oldest first.
func (s *MemoryStore) List() []*models.Note {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.notes))
	for _, e := range s.notes {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*models.Note, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.note.Clone())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
