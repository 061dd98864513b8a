package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/middleware"
)

func New(
	e *echo.Echo,
	authCtrl interface {
		Register(echo.Context) error
		Login(echo.Context) error
	},
	farmerCtrl interface{ Save(echo.Context) error },
	detectionCtrl interface {
		Upload(echo.Context) error
		Save(echo.Context) error
	},
	chatCtrl interface {
		Ask(echo.Context) error
		Reset(echo.Context) error
	},
	historyCtrl interface {
		Get(echo.Context) error
		Export(echo.Context) error
	},
	kbCtrl interface {
		IngestText(echo.Context) error
		IngestURL(echo.Context) error
		Search(echo.Context) error
		ListDocs(echo.Context) error
	},
	healthCtrl interface{ Health(echo.Context) error },
	metricsHandler http.Handler,
	limiter *middleware.RateLimiter,
) *echo.Echo {
	e.GET("/health", healthCtrl.Health)
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	api := e.Group("/api")
	limited := limiter.Middleware()

	api.POST("/register", authCtrl.Register)
	api.POST("/login", authCtrl.Login)

	api.POST("/farmer", farmerCtrl.Save)

	api.POST("/upload", detectionCtrl.Upload, limited)
	api.POST("/save_detection", detectionCtrl.Save)

	api.POST("/chat", chatCtrl.Ask, limited)
	api.POST("/chat/reset", chatCtrl.Reset)

	api.POST("/history", historyCtrl.Get)
	api.POST("/history/export", historyCtrl.Export)

	// KB endpoints
	api.POST("/kb/ingest", kbCtrl.IngestText)
	api.POST("/kb/ingest/url", kbCtrl.IngestURL)
	api.GET("/kb/search", kbCtrl.Search)
	api.GET("/kb/docs", kbCtrl.ListDocs)
	return e
}
