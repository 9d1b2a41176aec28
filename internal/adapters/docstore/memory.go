// Package docstore provides document registries for the mock AskIt server.
package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

// ErrNotFound is returned by Update for an unknown document.
var ErrNotFound = errors.New("document not found")

type record struct {
	doc          entities.Document
	departmentID int
}

// InMemoryStore implements ports.DocumentStore with maps.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int
	docs   map[int]record
}

var _ ports.DocumentStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store. IDs start at 1.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID: 1,
		docs:   make(map[int]record),
	}
}

// Create assigns the next ID to doc and stores a copy.
func (s *InMemoryStore) Create(ctx context.Context, doc *entities.Document, departmentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = s.nextID
	s.nextID++
	s.docs[doc.ID] = record{doc: *doc, departmentID: departmentID}
	return nil
}

// Get returns a copy of the document.
func (s *InMemoryStore) Get(ctx context.Context, id int) (*entities.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, false, nil
	}
	doc := rec.doc
	return &doc, true, nil
}

// List returns documents newest first.
func (s *InMemoryStore) List(ctx context.Context, departmentID, skip, limit int) ([]entities.Document, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entities.Document
	for _, rec := range s.docs {
		if departmentID != 0 && rec.departmentID != departmentID {
			continue
		}
		matched = append(matched, rec.doc)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	return page(matched, skip, limit), len(matched), nil
}

// Update replaces the stored document, keeping its department.
func (s *InMemoryStore) Update(ctx context.Context, doc *entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[doc.ID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "id %d", doc.ID)
	}
	rec.doc = *doc
	s.docs[doc.ID] = rec
	return nil
}

// Delete removes a document.
func (s *InMemoryStore) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	return true, nil
}

// Count returns the number of documents.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Departments returns the number of distinct departments.
func (s *InMemoryStore) Departments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]bool)
	for _, rec := range s.docs {
		seen[rec.departmentID] = true
	}
	return len(seen), nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}

func page(docs []entities.Document, skip, limit int) []entities.Document {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(docs) {
		return []entities.Document{}
	}
	docs = docs[skip:]
	if limit >= 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
