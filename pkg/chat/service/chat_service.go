package service

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/types"
)

type Request struct {
	Context      types.FarmerContext `json:"context"`
	Question     string              `json:"question"`
	LanguageCode string              `json:"languageCode"`
	// older clients send "language"
	Language  string `json:"language,omitempty"`
	SessionID string `json:"sessionId"`
}

// Lang returns the requested language code, preferring languageCode.
func (r Request) Lang() string {
	if r.LanguageCode != "" {
		return r.LanguageCode
	}
	return r.Language
}

type Response struct {
	// Question is echoed exactly as the farmer typed it.
	Question            string `json:"question"`
	Answer              string `json:"answer"`
	ID                  string `json:"id"`
	SessionID           string `json:"sessionId"`
	TranslationDegraded bool   `json:"translationDegraded"`
}

type ChatService interface {
	Ask(ctx context.Context, req Request) (Response, error)
	// Reset clears the transcript for a session key.
	Reset(ctx context.Context, key string) error
}

// UserChecker is satisfied by the auth user repository.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// NotesSource supplies reference text for the advisor prompt.
type NotesSource interface {
	Notes(ctx context.Context, question string, k int) (string, error)
}
