package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

// Readiness is satisfied by the disease classifier.
type Readiness interface {
	Ready(ctx context.Context) error
}

type HealthCtrl struct {
	db         *gorm.DB
	classifier Readiness
	advisor    string
}

// NewHealthCtrl; classifier may be nil when the model is not wired.
func NewHealthCtrl(db *gorm.DB, classifier Readiness, advisorName string) *HealthCtrl {
	return &HealthCtrl{db: db, classifier: classifier, advisor: advisorName}
}

type sub struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := sub{OK: true}
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			db = sub{Err: "db.DB(): " + err.Error()}
		} else if err := sqlDB.PingContext(ctx); err != nil {
			db = sub{Err: "ping: " + err.Error()}
		}
	} else {
		db = sub{Err: "gorm db is nil"}
	}

	model := sub{Err: "not configured"}
	if h.classifier != nil {
		if err := h.classifier.Ready(ctx); err != nil {
			model = sub{Err: err.Error()}
		} else {
			model = sub{OK: true}
		}
	}

	// the API stays useful without the classifier, so only the DB decides 503
	status := http.StatusOK
	if !db.OK {
		status = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": db.OK, "degraded": db.OK && !model.OK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"database":   db,
			"classifier": model,
		},
		"advisor": h.advisor,
		"time":    time.Now().Format(time.RFC3339),
	}
	return c.JSON(status, resp)
}
