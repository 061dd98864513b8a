package service

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

// Result is what the upload endpoint returns.
type Result struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	ID         string  `json:"id"`
	// set when the label could not be translated and is shown in English
	TranslationDegraded bool `json:"translationDegraded,omitempty"`
}

type DetectionService interface {
	// Classify runs the resident model and localizes the label for languageCode.
	Classify(ctx context.Context, id string, image []byte, languageCode string) (Result, error)
	// Save appends a detection for a registered user.
	Save(ctx context.Context, id, disease string, confidence float64, languageCode string) (*entities.DetectionRecord, error)
}

// UserChecker is satisfied by the auth user repository.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}
