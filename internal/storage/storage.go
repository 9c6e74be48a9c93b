package storage

import (
	"context"
	"errors"

	"github.com/avikd/tunesync-backend/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore is the account storage backend. The memory implementation
// serves development; the valkey implementation serves deployments
// where accounts must outlive the process.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}
