package controllerImp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/controller"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/service"
)

const badFormat = "Invalid image format. Use PNG, JPG, or JPEG."

var allowedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

type detectionCtrl struct {
	s        service.DetectionService
	maxBytes int64
}

// NewDetectionController; maxBytes <= 0 disables the upload size check.
func NewDetectionController(s service.DetectionService, maxBytes int64) controller.DetectionController {
	return &detectionCtrl{s: s, maxBytes: maxBytes}
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func (h *detectionCtrl) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "file is required")
	}
	if !allowedExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		return detail(c, http.StatusBadRequest, badFormat)
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return detail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Image larger than %d bytes", h.maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return detail(c, http.StatusBadRequest, "could not read upload")
	}
	defer f.Close()

	limit := h.maxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return detail(c, http.StatusBadRequest, "could not read upload")
	}
	if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
		return detail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Image larger than %d bytes", h.maxBytes))
	}

	res, err := h.s.Classify(c.Request().Context(), c.FormValue("id"), data, c.FormValue("languageCode"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidFormat) {
			return detail(c, http.StatusBadRequest, badFormat)
		}
		return detail(c, http.StatusInternalServerError, "Prediction failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

type saveRequest struct {
	ID           string   `json:"id"`
	Disease      string   `json:"disease"`
	Confidence   *float64 `json:"confidence"`
	LanguageCode string   `json:"languageCode"`
}

func (h *detectionCtrl) Save(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid input: malformed body")
	}
	if req.Confidence == nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid input: confidence is required")
	}

	rec, err := h.s.Save(c.Request().Context(), req.ID, req.Disease, *req.Confidence, req.LanguageCode)
	if err != nil {
		msg := "Failed to save detection"
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			msg = "Invalid input: " + strings.TrimSuffix(err.Error(), ": "+apperrors.ErrInvalidInput.Error())
		case errors.Is(err, apperrors.ErrNotFound):
			msg = "Unknown identifier, register first"
		}
		return detail(c, apperrors.HTTPStatus(err), msg)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Detection saved",
		"id":         rec.UserID,
		"disease":    rec.Disease,
		"confidence": rec.Confidence,
	})
}
