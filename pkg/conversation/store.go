// Package conversation keeps the running advisor transcript per chat session.
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

type Store interface {
	History(ctx context.Context, key string) ([]Turn, error)
	Append(ctx context.Context, key string, t Turn) error
	Reset(ctx context.Context, key string) error
	Close() error
}

// SessionKey picks the transcript key: explicit session id, else the farmer
// identifier, else a fresh id the client should send back next time.
func SessionKey(sessionID, identifier string) string {
	if s := strings.TrimSpace(sessionID); s != "" {
		return s
	}
	if s := strings.TrimSpace(identifier); s != "" {
		return s
	}
	return uuid.NewString()
}

// Render formats turns the way the advisor template expects.
func Render(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Human: ")
		b.WriteString(t.Question)
		b.WriteString("\nAI: ")
		b.WriteString(t.Answer)
	}
	return b.String()
}
