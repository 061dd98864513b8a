package controllerImp

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/history/controller"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/history/service"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type historyCtrl struct{ s service.HistoryService }

func NewHistoryController(s service.HistoryService) controller.HistoryController {
	return &historyCtrl{s}
}

type historyRequest struct {
	ID string `json:"id"`
	// accepted for client compatibility; history is returned as stored
	LanguageCode string `json:"languageCode"`
}

func (h *historyCtrl) Get(c echo.Context) error {
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	res, err := h.s.Get(c.Request().Context(), req.ID)
	if err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"detail": "Could not load history"})
	}
	return c.JSON(http.StatusOK, res)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (h *historyCtrl) Export(c echo.Context) error {
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	data, err := h.s.Export(c.Request().Context(), req.ID)
	if err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"detail": "Could not export history"})
	}
	name := fmt.Sprintf("history-%s.xlsx", unsafeName.ReplaceAllString(req.ID, "_"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}
