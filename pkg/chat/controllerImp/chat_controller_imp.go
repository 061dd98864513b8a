package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/chat/controller"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/chat/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/conversation"
)

type chatCtrl struct{ s service.ChatService }

func NewChatController(s service.ChatService) controller.ChatController { return &chatCtrl{s} }

func (h *chatCtrl) Ask(c echo.Context) error {
	var req service.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	res, err := h.s.Ask(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "question is required"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "Chatbot error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

type resetRequest struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
}

func (h *chatCtrl) Reset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid json"})
	}
	if req.SessionID == "" && req.ID == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "sessionId or id is required"})
	}
	key := conversation.SessionKey(req.SessionID, req.ID)
	if err := h.s.Reset(c.Request().Context(), key); err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"detail": "Could not reset conversation"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Conversation reset", "sessionId": key})
}
