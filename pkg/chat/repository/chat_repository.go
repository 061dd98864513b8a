package repository

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

type ChatRepository interface {
	Create(ctx context.Context, r *entities.ChatRecord) error
	// ListByUser returns records oldest first.
	ListByUser(ctx context.Context, userID string) ([]entities.ChatRecord, error)
}
