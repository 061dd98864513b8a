package serviceImp

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/embedder"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/repository"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/service"
)

const chunkRunes = 1000

type Svc struct {
	r      repository.KBRepository
	emb    embedder.Embedder
	logger *zap.Logger
}

// New accepts a nil embedder; search then falls back to keyword overlap.
func New(r repository.KBRepository, e embedder.Embedder, logger *zap.Logger) service.KBService {
	return &Svc{r: r, emb: e, logger: logger.Named("kb")}
}

// chunkText splits at the first line break after maxRunes runes.
func chunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = chunkRunes
	}
	parts := []string{}
	cur := strings.Builder{}
	count := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		count = 0
	}
	for _, r := range text {
		cur.WriteRune(r)
		count++
		if count >= maxRunes && r == '\n' {
			flush()
		}
	}
	flush()
	return parts
}

func (s *Svc) UpsertDocument(ctx context.Context, title, tags, text, sourceURL string) (*entities.KBDocument, int, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(text) == "" {
		return nil, 0, fmt.Errorf("title and text are required: %w", apperrors.ErrInvalidInput)
	}
	d := &entities.KBDocument{Title: title, Tags: tags, SourceURL: sourceURL}
	if err := s.r.CreateDoc(ctx, d); err != nil {
		return nil, 0, fmt.Errorf("create doc: %v: %w", err, apperrors.ErrPersistence)
	}

	chs := chunkText(text, chunkRunes)
	if len(chs) == 0 {
		return d, 0, nil
	}

	var embs [][]float32
	if s.emb != nil {
		var err error
		embs, err = s.emb.Embed(ctx, chs)
		if err != nil {
			// chunks stay searchable by keyword
			s.logger.Warn("embedding failed, storing chunks without vectors", zap.Uint("doc_id", d.DocID), zap.Error(err))
			embs = nil
		}
	}

	rows := make([]entities.KBChunk, len(chs))
	for i := range chs {
		var embBytes []byte
		if i < len(embs) && len(embs[i]) > 0 {
			embBytes = embedder.FloatsToBytes(embs[i])
		}
		rows[i] = entities.KBChunk{DocID: d.DocID, Ord: i, Text: chs[i], Embedding: embBytes}
	}

	if err := s.r.BulkInsertChunks(ctx, rows); err != nil {
		return nil, 0, fmt.Errorf("insert chunks: %v: %w", err, apperrors.ErrPersistence)
	}
	s.logger.Info("kb document ingested", zap.Uint("doc_id", d.DocID), zap.String("title", title), zap.Int("chunks", len(rows)))
	return d, len(rows), nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		v, w := float64(a[i]), float64(b[i])
		dot += v * w
		na += v * v
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// keywordScore is the share of query terms (3+ runes) present in text.
func keywordScore(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	have := map[string]bool{}
	for _, t := range tokens(text) {
		have[t] = true
	}
	hit := 0
	for _, t := range terms {
		if have[t] {
			hit++
		}
	}
	return float64(hit) / float64(len(terms))
}

func queryTerms(q string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tokens(q) {
		if len([]rune(t)) < 3 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Search returns up to k chunks with a positive score, best first.
func (s *Svc) Search(ctx context.Context, query string, k int) ([]entities.KBChunk, error) {
	q := strings.TrimSpace(query)
	if q == "" || k <= 0 {
		return nil, nil
	}

	var qvec []float32
	if s.emb != nil {
		if vec, err := s.emb.Embed(ctx, []string{q}); err == nil && len(vec) > 0 {
			qvec = vec[0]
		} else if err != nil {
			s.logger.Debug("query embedding failed, using keywords", zap.Error(err))
		}
	}

	chunks, err := s.r.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %v: %w", err, apperrors.ErrPersistence)
	}

	type scored struct {
		ch entities.KBChunk
		sc float64
	}
	terms := queryTerms(q)
	list := make([]scored, 0, len(chunks))
	for _, ch := range chunks {
		var sc float64
		if vec := embedder.BytesToFloats(ch.Embedding); len(qvec) > 0 && len(vec) == len(qvec) {
			sc = cosine(qvec, vec)
		} else {
			sc = keywordScore(terms, ch.Text)
		}
		if sc > 0 {
			list = append(list, scored{ch: ch, sc: sc})
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].sc > list[j].sc })

	if k > len(list) {
		k = len(list)
	}
	out := make([]entities.KBChunk, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, list[i].ch)
	}
	return out, nil
}

func (s *Svc) DocsMeta(ctx context.Context, ids []uint) (map[uint]entities.KBDocument, error) {
	return s.r.DocsByIDs(ctx, ids)
}

func (s *Svc) ListDocs(ctx context.Context) ([]entities.KBDocument, error) {
	return s.r.ListDocs(ctx)
}

func (s *Svc) Notes(ctx context.Context, question string, k int) (string, error) {
	chunks, err := s.Search(ctx, question, k)
	if err != nil || len(chunks) == 0 {
		return "", err
	}
	ids := make([]uint, 0, len(chunks))
	for _, ch := range chunks {
		ids = append(ids, ch.DocID)
	}
	meta, err := s.r.DocsByIDs(ctx, ids)
	if err != nil {
		meta = nil
	}

	var b strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if d, ok := meta[ch.DocID]; ok && d.Title != "" {
			b.WriteString("[" + d.Title + "]\n")
		}
		b.WriteString(ch.Text)
	}
	return b.String(), nil
}
