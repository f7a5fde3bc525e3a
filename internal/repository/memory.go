package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLimit is used by List calls that pass a limit <= 0.
const DefaultLimit = 50

type entry[T any] struct {
	seq   uint64
	value T
}

// memStore is a keyed in-memory table. Values are copied in and out so
// callers never share state with the store.
type memStore[T any] struct {
	mu      sync.RWMutex
	seq     uint64
	items   map[string]*entry[T]
	created func(*T) time.Time
}

func newMemStore[T any](created func(*T) time.Time) *memStore[T] {
	return &memStore[T]{
		items:   make(map[string]*entry[T]),
		created: created,
	}
}

func newID() (string, error) {
	return gonanoid.New()
}

func (s *memStore[T]) put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.items[id] = &entry[T]{seq: s.seq, value: v}
}

func (s *memStore[T]) get(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	v := e.value
	return &v, nil
}

func (s *memStore[T]) update(id string, apply func(*T)) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	apply(&e.value)
	v := e.value
	return &v, nil
}

func (s *memStore[T]) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// list returns matching values newest first. Values created in the same
// instant keep reverse insertion order.
func (s *memStore[T]) list(limit int, keep func(*T) bool) []*T {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	entries := make([]*entry[T], 0, len(s.items))
	for _, e := range s.items {
		if keep == nil || keep(&e.value) {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := s.created(&entries[i].value), s.created(&entries[j].value)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].seq > entries[j].seq
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]*T, len(entries))
	for i, e := range entries {
		out[i] = &e.value
	}
	return out
}
