package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/repository"
)

type detectionRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.DetectionRepository { return &detectionRepo{db} }

func (r *detectionRepo) Create(ctx context.Context, d *entities.DetectionRecord) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *detectionRepo) ListByUser(ctx context.Context, userID string) ([]entities.DetectionRecord, error) {
	out := []entities.DetectionRecord{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
