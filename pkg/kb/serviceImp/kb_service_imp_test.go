package serviceImp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/embedder"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/repositoryImp"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/testhelpers"
)

// axisEmbedder maps texts mentioning "blight" to one axis and everything else to another.
type axisEmbedder struct{ err error }

func (a axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if a.err != nil {
		return nil, a.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.Contains(strings.ToLower(t), "blight") {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

func newSvc(t *testing.T, e embedder.Embedder) service.KBService {
	return New(repositoryImp.New(testhelpers.NewSQLite(t)), e, zaptest.NewLogger(t))
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8) + "\n" + "tail"
	assert.Equal(t, []string{strings.Repeat("a", 8), strings.Repeat("b", 8), "tail"}, chunkText(text, 5))
	assert.Equal(t, []string{"short"}, chunkText("short", 0))
	assert.Empty(t, chunkText("  \n ", 10))
}

func TestUpsertDocument_Validation(t *testing.T) {
	svc := newSvc(t, nil)
	_, _, err := svc.UpsertDocument(context.Background(), "", "", "text", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSearch_KeywordFallback(t *testing.T) {
	svc := newSvc(t, nil)
	ctx := context.Background()

	_, n, err := svc.UpsertDocument(ctx, "Late blight", "tomato", "Late blight spreads in cool wet weather. Remove infected leaves.", "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, _, err = svc.UpsertDocument(ctx, "Rust", "wheat", "Wheat rust shows orange pustules.", "")
	require.NoError(t, err)

	got, err := svc.Search(ctx, "How do I treat blight on tomato leaves?", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "Late blight")

	none, err := svc.Search(ctx, "irrelevant question", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_Vectors(t *testing.T) {
	svc := newSvc(t, axisEmbedder{})
	ctx := context.Background()

	_, _, err := svc.UpsertDocument(ctx, "Blight", "", "Early blight on potato.", "")
	require.NoError(t, err)
	_, _, err = svc.UpsertDocument(ctx, "Mildew", "", "Powdery mildew on grapes.", "")
	require.NoError(t, err)

	got, err := svc.Search(ctx, "blight", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "Early blight")
}

func TestUpsert_EmbeddingFailureKeepsChunks(t *testing.T) {
	svc := newSvc(t, axisEmbedder{err: errors.New("embeddings down")})
	ctx := context.Background()

	_, n, err := svc.UpsertDocument(ctx, "Blight", "", "Early blight on potato.", "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Search(ctx, "potato blight", 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNotes(t *testing.T) {
	svc := newSvc(t, nil)
	ctx := context.Background()

	_, _, err := svc.UpsertDocument(ctx, "Late blight", "", "Spray copper fungicide for late blight.", "")
	require.NoError(t, err)

	notes, err := svc.Notes(ctx, "what about late blight", 3)
	require.NoError(t, err)
	assert.Equal(t, "[Late blight]\nSpray copper fungicide for late blight.", notes)

	empty, err := svc.Notes(ctx, "zzz", 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmbedderBytesRoundTrip(t *testing.T) {
	v := []float32{0.25, -1, 3.5}
	assert.Equal(t, v, embedder.BytesToFloats(embedder.FloatsToBytes(v)))
	assert.Nil(t, embedder.New("", "", "m"))
}
