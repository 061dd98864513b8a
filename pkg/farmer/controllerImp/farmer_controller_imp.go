package controllerImp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/controller"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/types"
)

type farmerCtrl struct{ s service.FarmerService }

func NewFarmerController(s service.FarmerService) controller.FarmerController { return &farmerCtrl{s} }

func (h *farmerCtrl) Save(c echo.Context) error {
	var req types.FarmerContext
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	msg, err := h.s.SaveProfile(c.Request().Context(), req)
	if err != nil {
		detail := "Failed to save farmer info"
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			detail = "id is required"
		case errors.Is(err, apperrors.ErrNotFound):
			detail = "Unknown identifier, register first"
		}
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"detail": detail})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg, "id": strings.TrimSpace(req.ID)})
}
