package repository

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

type DetectionRepository interface {
	Create(ctx context.Context, d *entities.DetectionRecord) error
	// ListByUser returns records oldest first.
	ListByUser(ctx context.Context, userID string) ([]entities.DetectionRecord, error)
}
