package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docuvault/docuvault/internal/document"
	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository used by unit tests and by local
// development without a MongoDB instance. Semantics mirror MongoRepo.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
	seq   map[string]int // insertion order, breaks createdAt ties
	next  int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]*document.Document),
		seq:   make(map[string]int),
	}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	cp := *doc
	m.store[doc.ID] = &cp
	m.next++
	m.seq[doc.ID] = m.next
	return nil
}

func (m *MemoryRepo) FindAll(ctx context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(*document.Document) bool { return true }), nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, patch document.Patch) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	applyPatch(d, patch)
	d.UpdatedAt = time.Now().UTC()
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	delete(m.seq, id)
	return nil
}

func (m *MemoryRepo) Search(ctx context.Context, query string, typeFilter document.Type) ([]*document.Document, error) {
	q := strings.ToLower(query)
	m.mu.RLock()
	defer m.mu.RUnlock()
	match := func(d *document.Document) bool {
		if typeFilter != "" && d.Type != typeFilter {
			return false
		}
		for _, f := range []string{d.Title, d.Content, d.OriginalName, d.Description} {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}
	return m.collect(match), nil
}

// collect returns matching copies sorted newest-created-first.
func (m *MemoryRepo) collect(match func(*document.Document) bool) []*document.Document {
	out := []*document.Document{}
	for _, d := range m.store {
		if match(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	return out
}
