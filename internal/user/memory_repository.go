package user

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.ID]; exists {
		return errors.New("user exists")
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id string, patch ProfilePatch) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if patch.DisplayName.Set {
		u.DisplayName = clonePtr(patch.DisplayName.Value)
	}
	if patch.AvatarURL.Set {
		u.AvatarURL = clonePtr(patch.AvatarURL.Value)
	}
	r.users[id] = u
	return cloneUser(u), nil
}

func cloneUser(u User) User {
	u.DisplayName = clonePtr(u.DisplayName)
	u.AvatarURL = clonePtr(u.AvatarURL)
	return u
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
