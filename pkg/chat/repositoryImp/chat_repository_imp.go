package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/chat/repository"
)

type chatRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ChatRepository { return &chatRepo{db} }

func (r *chatRepo) Create(ctx context.Context, c *entities.ChatRecord) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *chatRepo) ListByUser(ctx context.Context, userID string) ([]entities.ChatRecord, error) {
	out := []entities.ChatRecord{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
