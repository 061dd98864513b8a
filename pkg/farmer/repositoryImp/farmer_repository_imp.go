package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/repository"
)

type farmerRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FarmerRepository { return &farmerRepo{db} }

func (r *farmerRepo) Create(ctx context.Context, p *entities.FarmerProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *farmerRepo) FindByUserID(ctx context.Context, id string) (*entities.FarmerProfile, error) {
	var p entities.FarmerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
