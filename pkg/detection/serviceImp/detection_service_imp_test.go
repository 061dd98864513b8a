package serviceImp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	authRepo "github.com/kritlunkad/krishi-drishti-backend/pkg/auth/repositoryImp"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/classifier"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/repositoryImp"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/service"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/events"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/testhelpers"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/translate"
)

type fixedModel struct {
	pred classifier.Prediction
	err  error
}

func (m fixedModel) Classify(context.Context, []byte) (classifier.Prediction, error) { return m.pred, m.err }
func (m fixedModel) Ready(context.Context) error                                     { return m.err }
func (fixedModel) Close() error                                                      { return nil }

func newService(t *testing.T, model classifier.Classifier, tr translate.Translator, pub events.Publisher) service.DetectionService {
	db := testhelpers.NewSQLite(t)
	testhelpers.SeedUser(t, db, "farmer01")
	return NewDetectionService(repositoryImp.New(db), authRepo.New(db), model, tr, pub, zaptest.NewLogger(t))
}

func TestClassify_English(t *testing.T) {
	svc := newService(t, fixedModel{pred: classifier.Prediction{Label: "Leaf Blight", Confidence: 0.87}}, nil, nil)

	res, err := svc.Classify(context.Background(), "farmer01", []byte("img"), "en")
	require.NoError(t, err)
	assert.Equal(t, service.Result{Disease: "Leaf Blight", Confidence: 0.87, ID: "farmer01"}, res)
}

func TestClassify_TranslatesLabel(t *testing.T) {
	tr := translate.Func(func(_ context.Context, text, from, to string) translate.Result {
		assert.Equal(t, "en", from)
		assert.Equal(t, "hi", to)
		return translate.Result{Text: "पत्ती झुलसा"}
	})
	svc := newService(t, fixedModel{pred: classifier.Prediction{Label: "Leaf Blight", Confidence: 0.87}}, tr, nil)

	res, err := svc.Classify(context.Background(), "farmer01", []byte("img"), "HI")
	require.NoError(t, err)
	assert.Equal(t, "पत्ती झुलसा", res.Disease)
	assert.False(t, res.TranslationDegraded)
}

func TestClassify_TranslationDegradedKeepsEnglish(t *testing.T) {
	tr := translate.Func(func(_ context.Context, text, _, _ string) translate.Result {
		return translate.Result{Text: text, Degraded: true, Err: errors.New("connection refused")}
	})
	svc := newService(t, fixedModel{pred: classifier.Prediction{Label: "Leaf Blight", Confidence: 0.87}}, tr, nil)

	res, err := svc.Classify(context.Background(), "farmer01", []byte("img"), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Leaf Blight", res.Disease)
	assert.True(t, res.TranslationDegraded)
}

func TestClassify_DegradedTranslationNotWarnedTwice(t *testing.T) {
	db := testhelpers.NewSQLite(t)
	core, logs := observer.New(zap.WarnLevel)
	tr := translate.Func(func(_ context.Context, text, _, _ string) translate.Result {
		return translate.Result{Text: text, Degraded: true, Err: errors.New("timeout")}
	})
	svc := NewDetectionService(repositoryImp.New(db), authRepo.New(db),
		fixedModel{pred: classifier.Prediction{Label: "Leaf Blight", Confidence: 0.87}}, tr, nil, zap.New(core))

	res, err := svc.Classify(context.Background(), "farmer01", []byte("img"), "hi")
	require.NoError(t, err)
	assert.True(t, res.TranslationDegraded)
	assert.Zero(t, logs.Len())
}

func TestClassify_ModelUnavailable(t *testing.T) {
	svc := newService(t, classifier.Unavailable(errors.New("no server")), nil, nil)

	_, err := svc.Classify(context.Background(), "farmer01", []byte("img"), "en")
	assert.ErrorIs(t, err, apperrors.ErrModelUnavailable)
}

func TestSave(t *testing.T) {
	rec := &events.Recorder{}
	svc := newService(t, fixedModel{}, nil, rec)

	d, err := svc.Save(context.Background(), "farmer01", "Leaf Blight", 0.87, "")
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	assert.Equal(t, "en", d.Language)
	assert.Equal(t, []string{events.SubjectDetectionSaved}, rec.Subjects())
}

func TestSave_Validation(t *testing.T) {
	svc := newService(t, fixedModel{}, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name       string
		id         string
		disease    string
		confidence float64
		want       error
	}{
		{"missing id", "", "Leaf Blight", 0.5, apperrors.ErrInvalidInput},
		{"missing disease", "farmer01", " ", 0.5, apperrors.ErrInvalidInput},
		{"confidence too high", "farmer01", "Leaf Blight", 1.2, apperrors.ErrInvalidInput},
		{"negative confidence", "farmer01", "Leaf Blight", -0.1, apperrors.ErrInvalidInput},
		{"unknown user", "ghost", "Leaf Blight", 0.5, apperrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tc.id, tc.disease, tc.confidence, "en")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSave_PublishFailureDoesNotFail(t *testing.T) {
	svc := newService(t, fixedModel{}, nil, &events.Recorder{Err: errors.New("nats down")})

	_, err := svc.Save(context.Background(), "farmer01", "Leaf Blight", 0.5, "en")
	assert.NoError(t, err)
}

type failingRepo struct{ err error }

func (f failingRepo) Create(context.Context, *entities.DetectionRecord) error { return f.err }
func (f failingRepo) ListByUser(context.Context, string) ([]entities.DetectionRecord, error) {
	return nil, f.err
}

func TestSave_PersistenceFailure(t *testing.T) {
	db := testhelpers.NewSQLite(t)
	testhelpers.SeedUser(t, db, "farmer01")
	rec := &events.Recorder{}
	svc := NewDetectionService(failingRepo{err: errors.New("disk I/O error")}, authRepo.New(db),
		fixedModel{}, nil, rec, zaptest.NewLogger(t))

	d, err := svc.Save(context.Background(), "farmer01", "Leaf Blight", 0.5, "en")
	require.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Nil(t, d)
	assert.Empty(t, rec.Subjects())
}
