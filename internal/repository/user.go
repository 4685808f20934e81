package repository

import (
	"context"
	"errors"
	"fmt"

	"user-service/internal/domain"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("user not found")

// StorageError wraps any failure reported by the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, username domain.Username, password domain.Password) (*domain.User, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username domain.Username) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id domain.UserID, password domain.Password) (int64, error)
	Delete(ctx context.Context, id domain.UserID) (int64, error)
}
