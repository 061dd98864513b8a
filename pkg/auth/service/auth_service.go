package service

import "context"

type AuthService interface {
	Register(ctx context.Context, id, password string) (string, error)
	Login(ctx context.Context, id, password string) (string, error)
}
