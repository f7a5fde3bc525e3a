package client

import (
	"context"
	"sync"

	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

// SessionKey is the key the last generated idea list is stored under.
const SessionKey = "generatedIdeas"

// Store keeps session values between calls.
type Store interface {
	Get(key string) ([]models.PostIdea, bool)
	Set(key string, ideas []models.PostIdea)
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]models.PostIdea
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]models.PostIdea)}
}

func (s *MemoryStore) Get(key string) ([]models.PostIdea, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ideas, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return append([]models.PostIdea(nil), ideas...), true
}

func (s *MemoryStore) Set(key string, ideas []models.PostIdea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]models.PostIdea(nil), ideas...)
}

// IdeaSession remembers the last generated idea list so a UI can show it
// again without another generation call.
type IdeaSession struct {
	client *Client
	store  Store
}

func NewIdeaSession(client *Client, store Store) *IdeaSession {
	return &IdeaSession{client: client, store: store}
}

func (s *IdeaSession) Generate(ctx context.Context, req transfer.GenerateIdeasRequest) ([]models.PostIdea, error) {
	ideas, err := s.client.GenerateIdeas(ctx, req)
	if err != nil {
		return nil, err
	}
	s.store.Set(SessionKey, ideas)
	return ideas, nil
}

// Ideas returns the session list, falling back to the server's newest ideas
// when the session is empty.
func (s *IdeaSession) Ideas(ctx context.Context, limit int) ([]models.PostIdea, error) {
	if ideas, ok := s.store.Get(SessionKey); ok && len(ideas) > 0 {
		if limit > 0 && len(ideas) > limit {
			ideas = ideas[:limit]
		}
		return ideas, nil
	}
	return s.client.Ideas(ctx, limit)
}

// UpdateIdea edits an idea on the server and replaces it in the session list.
func (s *IdeaSession) UpdateIdea(ctx context.Context, id string, req transfer.UpdateIdeaRequest) (*models.PostIdea, error) {
	updated, err := s.client.UpdateIdea(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if ideas, ok := s.store.Get(SessionKey); ok {
		for i := range ideas {
			if ideas[i].ID == id {
				ideas[i] = *updated
			}
		}
		s.store.Set(SessionKey, ideas)
	}
	return updated, nil
}
