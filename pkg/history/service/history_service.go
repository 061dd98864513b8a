package service

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

// History is everything stored for one identifier. Lists are never nil.
type History struct {
	Farmer     *entities.FarmerProfile    `json:"farmer"`
	Detections []entities.DetectionRecord `json:"detections"`
	Chats      []entities.ChatRecord      `json:"chats"`
}

type HistoryService interface {
	Get(ctx context.Context, id string) (History, error)
	// Export renders the history as an XLSX workbook.
	Export(ctx context.Context, id string) ([]byte, error)
}
