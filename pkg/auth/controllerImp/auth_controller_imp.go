package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/auth/controller"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/auth/service"
)

type authCtrl struct{ s service.AuthService }

func NewAuthController(s service.AuthService) controller.AuthController { return &authCtrl{s} }

type credentials struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

func (h *authCtrl) Register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	id, err := h.s.Register(c.Request().Context(), req.ID, req.Password)
	if err != nil {
		detail := "Registration failed"
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			detail = "Identifier already registered"
		case errors.Is(err, apperrors.ErrInvalidInput):
			detail = "Identifier and password are required"
		}
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"detail": detail})
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Registration successful", "id": id})
}

func (h *authCtrl) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	id, err := h.s.Login(c.Request().Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Invalid identifier or password"})
		}
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"detail": "Login failed"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Login successful", "id": id})
}
