package serviceImp

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/classifier"
	repo "github.com/kritlunkad/krishi-drishti-backend/pkg/detection/repository"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/events"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/translate"
)

type detectionSvc struct {
	r          repo.DetectionRepository
	users      service.UserChecker
	model      classifier.Classifier
	translator translate.Translator
	pub        events.Publisher
	logger     *zap.Logger
}

func NewDetectionService(
	r repo.DetectionRepository,
	users service.UserChecker,
	model classifier.Classifier,
	translator translate.Translator,
	pub events.Publisher,
	logger *zap.Logger,
) service.DetectionService {
	if translator == nil {
		translator = translate.Identity{}
	}
	if pub == nil {
		pub = events.Noop{}
	}
	return &detectionSvc{r: r, users: users, model: model, translator: translator, pub: pub, logger: logger.Named("detection")}
}

func (s *detectionSvc) Classify(ctx context.Context, id string, image []byte, languageCode string) (service.Result, error) {
	pred, err := s.model.Classify(ctx, image)
	if err != nil {
		s.logger.Warn("classification failed", zap.String("id", id), zap.Error(err))
		return service.Result{}, err
	}

	out := service.Result{Disease: pred.Label, Confidence: pred.Confidence, ID: id}
	if lang := translate.Normalize(languageCode); translate.NeedsTranslation(lang) {
		res := s.translator.Translate(ctx, pred.Label, translate.DefaultLanguage, lang)
		out.Disease = res.Text
		out.TranslationDegraded = res.Degraded
		if res.Degraded {
			s.logger.Debug("label translation degraded", zap.String("lang", lang), zap.Error(res.Err))
		}
	}
	s.logger.Info("image classified",
		zap.String("id", id),
		zap.String("disease", pred.Label),
		zap.Float64("confidence", pred.Confidence),
	)
	return out, nil
}

func (s *detectionSvc) Save(ctx context.Context, id, disease string, confidence float64, languageCode string) (*entities.DetectionRecord, error) {
	id = strings.TrimSpace(id)
	disease = strings.TrimSpace(disease)
	switch {
	case id == "":
		return nil, fmt.Errorf("id is required: %w", apperrors.ErrInvalidInput)
	case disease == "":
		return nil, fmt.Errorf("disease is required: %w", apperrors.ErrInvalidInput)
	case math.IsNaN(confidence) || confidence < 0 || confidence > 1:
		return nil, fmt.Errorf("confidence %v outside [0,1]: %w", confidence, apperrors.ErrInvalidInput)
	}

	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %v: %w", err, apperrors.ErrPersistence)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}

	rec := &entities.DetectionRecord{
		UserID:     id,
		Disease:    disease,
		Confidence: confidence,
		Language:   translate.Normalize(languageCode),
	}
	if err := s.r.Create(ctx, rec); err != nil {
		s.logger.Error("save detection failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("save detection: %v: %w", err, apperrors.ErrPersistence)
	}

	events.Emit(ctx, s.pub, s.logger, events.SubjectDetectionSaved, events.DetectionSaved{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Disease:    rec.Disease,
		Confidence: rec.Confidence,
		At:         time.Now().UTC(),
	})
	return rec, nil
}
