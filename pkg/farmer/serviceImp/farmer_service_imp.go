package serviceImp

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	repo "github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/repository"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/types"
)

type farmerSvc struct {
	r      repo.FarmerRepository
	users  service.UserChecker
	logger *zap.Logger
}

func NewFarmerService(r repo.FarmerRepository, users service.UserChecker, logger *zap.Logger) service.FarmerService {
	return &farmerSvc{r: r, users: users, logger: logger.Named("farmer")}
}

func (s *farmerSvc) SaveProfile(ctx context.Context, fc types.FarmerContext) (string, error) {
	p := fc.ToProfile()
	if p.UserID == "" {
		return "", fmt.Errorf("id is required: %w", apperrors.ErrInvalidInput)
	}

	existing, err := s.r.FindByUserID(ctx, p.UserID)
	switch {
	case err == nil && existing != nil:
		return service.MsgAlreadyExists, nil
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return "", fmt.Errorf("lookup profile: %v: %w", err, apperrors.ErrPersistence)
	}

	ok, err := s.users.Exists(ctx, p.UserID)
	if err != nil {
		return "", fmt.Errorf("lookup user: %v: %w", err, apperrors.ErrPersistence)
	}
	if !ok {
		return "", fmt.Errorf("user %s: %w", p.UserID, apperrors.ErrNotFound)
	}

	if err := s.r.Create(ctx, p); err != nil {
		// a concurrent request may have created it first
		if again, ferr := s.r.FindByUserID(ctx, p.UserID); ferr == nil && again != nil {
			return service.MsgAlreadyExists, nil
		}
		s.logger.Error("create profile failed", zap.String("id", p.UserID), zap.Error(err))
		return "", fmt.Errorf("create profile: %v: %w", err, apperrors.ErrPersistence)
	}
	s.logger.Info("farmer profile saved", zap.String("id", p.UserID))
	return service.MsgSaved, nil
}

func (s *farmerSvc) GetProfile(ctx context.Context, id string) (*entities.FarmerProfile, error) {
	p, err := s.r.FindByUserID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup profile: %v: %w", err, apperrors.ErrPersistence)
	}
	return p, nil
}
