package service

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/types"
)

const (
	MsgSaved         = "Farmer info saved"
	MsgAlreadyExists = "Farmer already exists"
)

type FarmerService interface {
	// SaveProfile creates the profile once; later calls never overwrite it.
	SaveProfile(ctx context.Context, fc types.FarmerContext) (string, error)
	// GetProfile returns nil without error when no profile exists.
	GetProfile(ctx context.Context, id string) (*entities.FarmerProfile, error)
}

// UserChecker is satisfied by the auth user repository.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}
