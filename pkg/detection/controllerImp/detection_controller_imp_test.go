package controllerImp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	authRepo "github.com/kritlunkad/krishi-drishti-backend/pkg/auth/repositoryImp"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/classifier"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/repositoryImp"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/detection/serviceImp"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/testhelpers"
)

type stubModel struct {
	pred classifier.Prediction
	err  error
}

func (m stubModel) Classify(context.Context, []byte) (classifier.Prediction, error) { return m.pred, m.err }
func (m stubModel) Ready(context.Context) error                                     { return m.err }
func (stubModel) Close() error                                                      { return nil }

func newServer(t *testing.T, model classifier.Classifier, maxBytes int64) *echo.Echo {
	db := testhelpers.NewSQLite(t)
	testhelpers.SeedUser(t, db, "farmer01")
	svc := serviceImp.NewDetectionService(repositoryImp.New(db), authRepo.New(db), model, nil, nil, zaptest.NewLogger(t))
	ctrl := NewDetectionController(svc, maxBytes)

	e := echo.New()
	e.POST("/api/upload", ctrl.Upload)
	e.POST("/api/save_detection", ctrl.Save)
	return e
}

func multipartUpload(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUpload_ReturnsPrediction(t *testing.T) {
	e := newServer(t, stubModel{pred: classifier.Prediction{Label: "Leaf Blight", Confidence: 0.87}}, 1<<20)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartUpload(t, "leaf.JPG", []byte("jpeg bytes"), map[string]string{"id": "farmer01", "languageCode": "en"}))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Leaf Blight", body["disease"])
	assert.InDelta(t, 0.87, body["confidence"], 1e-9)
	assert.Equal(t, "farmer01", body["id"])
}

func TestUpload_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		model    classifier.Classifier
		filename string
		size     int
		want     int
		detail   string
	}{
		{"bad extension", stubModel{}, "leaf.gif", 10, http.StatusBadRequest, badFormat},
		{"too large", stubModel{}, "leaf.png", 2048, http.StatusRequestEntityTooLarge, "Image larger than 1024 bytes"},
		{"undecodable", stubModel{err: fmt.Errorf("decode: %w", apperrors.ErrInvalidFormat)}, "leaf.png", 10, http.StatusBadRequest, badFormat},
		{"model down", classifier.Unavailable(errors.New("no server")), "leaf.png", 10, http.StatusInternalServerError, "Prediction failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newServer(t, tc.model, 1024)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, multipartUpload(t, tc.filename, bytes.Repeat([]byte{1}, tc.size), map[string]string{"id": "farmer01"}))

			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, decode(t, rec)["detail"], tc.detail)
		})
	}
}

func TestSaveDetection(t *testing.T) {
	e := newServer(t, stubModel{}, 0)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/save_detection", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"id":"farmer01","disease":"Leaf Blight","confidence":0.87}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Detection saved", body["message"])
	assert.Equal(t, "Leaf Blight", body["disease"])

	rec = post(`{"id":"farmer01","disease":"Leaf Blight"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(`{"id":"farmer01","disease":"Leaf Blight","confidence":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "Invalid input")

	rec = post(`{"id":"ghost","disease":"Leaf Blight","confidence":0.5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenRepo struct{}

func (brokenRepo) Create(context.Context, *entities.DetectionRecord) error {
	return errors.New("database is locked")
}
func (brokenRepo) ListByUser(context.Context, string) ([]entities.DetectionRecord, error) {
	return nil, errors.New("database is locked")
}

func TestSaveDetection_PersistenceFailure(t *testing.T) {
	db := testhelpers.NewSQLite(t)
	testhelpers.SeedUser(t, db, "farmer01")
	svc := serviceImp.NewDetectionService(brokenRepo{}, authRepo.New(db), stubModel{}, nil, nil, zaptest.NewLogger(t))
	e := echo.New()
	e.POST("/api/save_detection", NewDetectionController(svc, 0).Save)

	req := httptest.NewRequest(http.MethodPost, "/api/save_detection",
		strings.NewReader(`{"id":"farmer01","disease":"Leaf Blight","confidence":0.87}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to save detection", decode(t, rec)["detail"])
}
