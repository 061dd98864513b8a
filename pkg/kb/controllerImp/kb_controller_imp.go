package controllerImp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/config"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/controller"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/kb/service"
)

const searchK = 6

type KBCtrl struct {
	s        service.KBService
	allow    map[string]bool
	maxBytes int
	http     *resty.Client
}

type ingestReq struct {
	Title     string  `json:"title"`
	Tags      string  `json:"tags"`
	Text      string  `json:"text"`
	SourceURL *string `json:"source_url"`
}

func New(s service.KBService, cfg config.KBConfig) controller.KBController {
	allow := map[string]bool{}
	var hosts []string
	for _, h := range cfg.AllowedDomains {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allow[h] = true
			hosts = append(hosts, h)
		}
	}
	mb := cfg.MaxBytes
	if mb <= 0 {
		mb = 1500000
	}
	return &KBCtrl{
		s:        s,
		allow:    allow,
		maxBytes: mb,
		// redirects must stay inside the allowlist too
		http: resty.New().
			SetTimeout(20*time.Second).
			SetHeader("User-Agent", "krishi-drishti-kb/1.0").
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5), resty.DomainCheckRedirectPolicy(hosts...)),
	}
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func (h *KBCtrl) IngestText(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid json: "+err.Error())
	}
	if strings.TrimSpace(req.Title) == "" {
		return detail(c, http.StatusUnprocessableEntity, "title is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return detail(c, http.StatusUnprocessableEntity, "text is required")
	}

	src := ""
	if req.SourceURL != nil {
		src = *req.SourceURL
	}
	doc, chunks, err := h.s.UpsertDocument(c.Request().Context(), strings.TrimSpace(req.Title), strings.TrimSpace(req.Tags), req.Text, src)
	if err != nil {
		return detail(c, apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": chunks})
}

func (h *KBCtrl) IngestURL(c echo.Context) error {
	var body struct {
		URL   string `json:"url"`
		Tags  string `json:"tags"`
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		return detail(c, http.StatusBadRequest, "url required")
	}
	u, err := url.Parse(body.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return detail(c, http.StatusBadRequest, "bad url")
	}
	if !h.allow[strings.ToLower(u.Hostname())] {
		return detail(c, http.StatusForbidden, "domain not allowed")
	}

	ctx := c.Request().Context()
	txt, title, err := h.fetchMainText(ctx, body.URL)
	if err != nil {
		return detail(c, http.StatusBadGateway, err.Error())
	}
	if body.Title != "" {
		title = body.Title
	}
	if strings.TrimSpace(title) == "" {
		title = u.Host
	}

	doc, n, err := h.s.UpsertDocument(ctx, title, body.Tags, txt, body.URL)
	if err != nil {
		return detail(c, apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

type outChunk struct {
	ChunkID   uint   `json:"chunk_id"`
	DocID     uint   `json:"doc_id"`
	Ord       int    `json:"ord"`
	Text      string `json:"text"`
	DocTitle  string `json:"doc_title,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

func (h *KBCtrl) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return detail(c, http.StatusBadRequest, "q required")
	}
	ctx := c.Request().Context()

	chunks, err := h.s.Search(ctx, q, searchK)
	if err != nil {
		return detail(c, apperrors.HTTPStatus(err), err.Error())
	}

	seen := map[uint]struct{}{}
	ids := make([]uint, 0, len(chunks))
	for _, ch := range chunks {
		if _, ok := seen[ch.DocID]; !ok {
			seen[ch.DocID] = struct{}{}
			ids = append(ids, ch.DocID)
		}
	}
	// titles are decoration; a lookup failure still returns the chunks
	meta, _ := h.s.DocsMeta(ctx, ids)

	out := make([]outChunk, 0, len(chunks))
	for _, ch := range chunks {
		oc := outChunk{ChunkID: ch.ChunkID, DocID: ch.DocID, Ord: ch.Ord, Text: ch.Text}
		if d, ok := meta[ch.DocID]; ok {
			oc.DocTitle = d.Title
			oc.SourceURL = d.SourceURL
		}
		out = append(out, oc)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *KBCtrl) ListDocs(c echo.Context) error {
	docs, err := h.s.ListDocs(c.Request().Context())
	if err != nil {
		return detail(c, http.StatusInternalServerError, "could not list documents")
	}
	return c.JSON(http.StatusOK, docs)
}

var errTooLarge = errors.New("page too large")

func (h *KBCtrl) fetchMainText(ctx context.Context, u string) (string, string, error) {
	resp, err := h.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(u)
	if err != nil {
		return "", "", err
	}
	raw := resp.RawBody()
	defer raw.Close()
	if resp.IsError() {
		return "", "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode())
	}
	if cl := resp.RawResponse.ContentLength; cl > int64(h.maxBytes) {
		return "", "", errTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(raw, int64(h.maxBytes)+1))
	if err != nil {
		return "", "", err
	}
	if len(b) > h.maxBytes {
		return "", "", errTooLarge
	}

	ct := strings.ToLower(resp.Header().Get("Content-Type"))
	switch {
	case strings.Contains(ct, "text/plain"):
		return string(b), guessTitleFromText(string(b)), nil
	case strings.Contains(ct, "text/html"):
	default:
		return "", "", fmt.Errorf("unsupported content-type: %s", ct)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	// article/main first, whole page otherwise
	var parts []string
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return cleanWhitespace(strings.Join(parts, "\n")), title, nil
}

var wsRX = regexp.MustCompile(`[ \t]+\n`)

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return wsRX.ReplaceAllString(s, "\n")
}

func guessTitleFromText(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	if r := []rune(line); len(r) > 120 {
		line = string(r[:120])
	}
	return line
}
