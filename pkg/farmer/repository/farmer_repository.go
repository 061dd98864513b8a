package repository

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

type FarmerRepository interface {
	Create(ctx context.Context, p *entities.FarmerProfile) error
	// FindByUserID returns apperrors.ErrNotFound when no profile exists.
	FindByUserID(ctx context.Context, id string) (*entities.FarmerProfile, error)
}
