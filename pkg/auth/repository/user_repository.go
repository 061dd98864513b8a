package repository

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

type UserRepository interface {
	Create(ctx context.Context, u *entities.User) error
	// FindByID returns apperrors.ErrNotFound when the identifier is unknown.
	FindByID(ctx context.Context, id string) (*entities.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}
