package serviceImp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/ai"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	repo "github.com/kritlunkad/krishi-drishti-backend/pkg/chat/repository"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/chat/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/conversation"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/events"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/types"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/logging"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/metrics"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/translate"
)

// Deps groups the collaborators of the chat flow. Notes, Events and Metrics
// are optional.
type Deps struct {
	Repo       repo.ChatRepository
	Users      service.UserChecker
	Advisor    ai.Advisor
	Store      conversation.Store
	Translator translate.Translator
	Notes      service.NotesSource
	NotesK     int
	Events     events.Publisher
	Metrics    *metrics.Metrics
}

type chatSvc struct {
	Deps
	logger *zap.Logger
}

func NewChatService(d Deps, logger *zap.Logger) service.ChatService {
	if d.Translator == nil {
		d.Translator = translate.Identity{}
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	return &chatSvc{Deps: d, logger: logger.Named("chat")}
}

func (s *chatSvc) Ask(ctx context.Context, req service.Request) (service.Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return service.Response{}, fmt.Errorf("question is required: %w", apperrors.ErrInvalidInput)
	}
	lang := translate.Normalize(req.Lang())
	id := strings.TrimSpace(req.Context.ID)
	key := conversation.SessionKey(req.SessionID, id)
	log := s.logger.With(zap.String("session", key), zap.String("lang", lang))

	fields := req.Context.Map()
	degraded := false
	toEnglish := func(text string) string {
		if !translate.NeedsTranslation(lang) {
			return text
		}
		res := s.Translator.Translate(ctx, text, lang, translate.DefaultLanguage)
		if res.Degraded {
			degraded = true
			log.Debug("translation to english degraded", zap.String("text", logging.Truncate(text, 80)), zap.Error(res.Err))
		}
		return res.Text
	}
	for _, f := range types.TranslatableFields {
		if v, ok := fields[f]; ok {
			fields[f] = toEnglish(v)
		}
	}
	englishQ := toEnglish(question)

	turns, err := s.Store.History(ctx, key)
	if err != nil {
		log.Warn("load transcript failed, continuing without history", zap.Error(err))
		turns = nil
	}

	var notes string
	if s.Notes != nil && s.NotesK > 0 {
		if notes, err = s.Notes.Notes(ctx, englishQ, s.NotesK); err != nil {
			log.Warn("knowledge base lookup failed", zap.Error(err))
			notes = ""
		}
	}

	farmerJSON, _ := json.MarshalIndent(fields, "", "  ")
	prompt := ai.RenderAdvisorPrompt(ai.PromptInput{
		FarmerContext: string(farmerJSON),
		History:       conversation.Render(turns),
		Notes:         notes,
		Question:      englishQ,
	})

	start := time.Now()
	englishA, err := s.Advisor.Advise(ctx, prompt)
	if err != nil {
		s.Metrics.ObserveAdvisor(s.Advisor.Name(), "error")
		log.Error("advisor failed", zap.String("advisor", s.Advisor.Name()), zap.Error(err))
		return service.Response{}, fmt.Errorf("%s: %v: %w", s.Advisor.Name(), err, apperrors.ErrModelUnavailable)
	}
	s.Metrics.ObserveAdvisor(s.Advisor.Name(), "ok")
	englishA = strings.TrimSpace(englishA)

	rec := &entities.ChatRecord{
		SessionID: key,
		Question:  englishQ,
		Answer:    englishA,
		Language:  lang,
		Context:   fields,
	}
	if id != "" {
		ok, err := s.Users.Exists(ctx, id)
		if err != nil {
			return service.Response{}, fmt.Errorf("lookup user: %v: %w", err, apperrors.ErrPersistence)
		}
		if ok {
			rec.UserID = &id
		}
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		log.Error("save chat failed", zap.Error(err))
		return service.Response{}, fmt.Errorf("save chat: %v: %w", err, apperrors.ErrPersistence)
	}

	if err := s.Store.Append(ctx, key, conversation.Turn{Question: englishQ, Answer: englishA, At: time.Now().UTC()}); err != nil {
		log.Warn("append transcript failed", zap.Error(err))
	}

	answer := englishA
	if translate.NeedsTranslation(lang) {
		res := s.Translator.Translate(ctx, englishA, translate.DefaultLanguage, lang)
		if res.Degraded {
			degraded = true
			log.Debug("translation from english degraded", zap.Error(res.Err))
		}
		answer = res.Text
	}
	answer = strings.ReplaceAll(answer, "*", "")

	payload := events.ChatSaved{ID: rec.ID, SessionID: key, Language: lang, Degraded: degraded, At: rec.CreatedAt}
	if rec.UserID != nil {
		payload.UserID = *rec.UserID
	}
	events.Emit(ctx, s.Events, log, events.SubjectChatSaved, payload)

	log.Info("chat answered",
		zap.String("advisor", s.Advisor.Name()),
		zap.Int("history_turns", len(turns)),
		zap.Bool("notes", notes != ""),
		zap.Bool("translation_degraded", degraded),
		zap.Duration("advisor_latency", time.Since(start)),
	)
	return service.Response{
		Question:            req.Question,
		Answer:              answer,
		ID:                  id,
		SessionID:           key,
		TranslationDegraded: degraded,
	}, nil
}

func (s *chatSvc) Reset(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sessionId or id is required: %w", apperrors.ErrInvalidInput)
	}
	if err := s.Store.Reset(ctx, key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	s.logger.Info("transcript reset", zap.String("session", key))
	return nil
}
