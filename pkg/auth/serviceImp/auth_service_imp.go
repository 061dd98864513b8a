package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	repo "github.com/kritlunkad/krishi-drishti-backend/pkg/auth/repository"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/auth/service"
)

type authSvc struct {
	r      repo.UserRepository
	cost   int
	logger *zap.Logger
}

func NewAuthService(r repo.UserRepository, logger *zap.Logger) service.AuthService {
	return &authSvc{r: r, cost: bcrypt.DefaultCost, logger: logger.Named("auth")}
}

// NewAuthServiceWithCost lets tests use bcrypt.MinCost.
func NewAuthServiceWithCost(r repo.UserRepository, cost int, logger *zap.Logger) service.AuthService {
	return &authSvc{r: r, cost: cost, logger: logger.Named("auth")}
}

func (s *authSvc) Register(ctx context.Context, id, password string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		return "", fmt.Errorf("identifier and password are required: %w", apperrors.ErrInvalidInput)
	}

	exists, err := s.r.Exists(ctx, id)
	if err != nil {
		return "", fmt.Errorf("lookup user: %v: %w", err, apperrors.ErrPersistence)
	}
	if exists {
		return "", fmt.Errorf("identifier %s: %w", id, apperrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes
		return "", fmt.Errorf("hash password: %v: %w", err, apperrors.ErrInvalidInput)
	}

	if err := s.r.Create(ctx, &entities.User{ID: id, PasswordHash: string(hash)}); err != nil {
		// lost a race with a concurrent registration
		if ok, _ := s.r.Exists(ctx, id); ok {
			return "", fmt.Errorf("identifier %s: %w", id, apperrors.ErrConflict)
		}
		s.logger.Error("create user failed", zap.String("id", id), zap.Error(err))
		return "", fmt.Errorf("create user: %v: %w", err, apperrors.ErrPersistence)
	}
	s.logger.Info("user registered", zap.String("id", id))
	return id, nil
}

func (s *authSvc) Login(ctx context.Context, id, password string) (string, error) {
	id = strings.TrimSpace(id)
	u, err := s.r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrUnauthorized
		}
		return "", fmt.Errorf("lookup user: %v: %w", err, apperrors.ErrPersistence)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrUnauthorized
	}
	return u.ID, nil
}
