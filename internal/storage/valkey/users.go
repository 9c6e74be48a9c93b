package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/avikd/tunesync-backend/internal/models"
	"github.com/avikd/tunesync-backend/internal/storage"
	valkey "github.com/valkey-io/valkey-go"
)

const (
	userKeyPrefix     = "user:"
	usernameKeyPrefix = "username:"
)

// UserStore keeps accounts in Valkey so they survive process restarts.
// Users are stored as JSON under "user:<id>", with a "username:<name>"
// index pointing at the id.
type UserStore struct {
	client valkey.Client
}

// NewUserStore connects to the Valkey instance at addr.
func NewUserStore(addr string) (*UserStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", addr, err)
	}
	log.Printf("[Storage] Connected to Valkey at %s", addr)
	return &UserStore{client: client}, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user models.User) error {
	// Claim the username first; NX makes concurrent signups race safely.
	set := s.client.B().Set().Key(usernameKeyPrefix + user.Username).Value(user.ID).Nx().Build()
	resp := s.client.Do(ctx, set)
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return storage.ErrUserExists
		}
		return fmt.Errorf("failed to claim username %s: %w", user.Username, err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}
	put := s.client.B().Set().Key(userKeyPrefix + user.ID).Value(string(data)).Build()
	if err := s.client.Do(ctx, put).Error(); err != nil {
		return fmt.Errorf("failed to store user %s: %w", user.ID, err)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	get := s.client.B().Get().Key(userKeyPrefix + id).Build()
	data, err := s.client.Do(ctx, get).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", id, err)
	}
	return &user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	get := s.client.B().Get().Key(usernameKeyPrefix + username).Build()
	id, err := s.client.Do(ctx, get).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve username %s: %w", username, err)
	}
	return s.GetUser(ctx, id)
}

// Close releases the Valkey connection.
func (s *UserStore) Close() {
	s.client.Close()
}
