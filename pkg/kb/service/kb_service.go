package service

import (
	"context"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

type KBService interface {
	UpsertDocument(ctx context.Context, title, tags, text, sourceURL string) (*entities.KBDocument, int, error)
	Search(ctx context.Context, query string, k int) ([]entities.KBChunk, error)
	DocsMeta(ctx context.Context, ids []uint) (map[uint]entities.KBDocument, error)
	ListDocs(ctx context.Context) ([]entities.KBDocument, error)
	// Notes renders the k most relevant chunks as reference text for the advisor.
	// It returns "" when nothing matches.
	Notes(ctx context.Context, question string, k int) (string, error)
}
