package memory

import (
	"context"
	"sync"

	"github.com/avikd/tunesync-backend/internal/models"
	"github.com/avikd/tunesync-backend/internal/storage"
)

// UserStore keeps accounts in process memory.
type UserStore struct {
	mu     sync.RWMutex
	users  map[string]*models.User // id -> user
	byName map[string]string       // username -> id
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:  make(map[string]*models.User),
		byName: make(map[string]string),
	}
}

func (s *UserStore) CreateUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[user.Username]; ok {
		return storage.ErrUserExists
	}
	u := user
	s.users[u.ID] = &u
	s.byName[u.Username] = u.ID
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}
