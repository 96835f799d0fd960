// Package memory provides in-memory implementations of the repository
// stores. They back the handler tests and can serve as a storage layer
// for local development without MySQL. Semantics mirror the SQL
// implementations, including the conditional adopter update.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/repository"
)

type UserStore struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, byID: make(map[uint64]model.User)}
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.byID {
		if other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = *u
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *UserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[u.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, other := range s.byID {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.byID[u.ID] = u
	return nil
}
