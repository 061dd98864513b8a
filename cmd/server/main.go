package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/config"
	"github.com/kritlunkad/krishi-drishti-backend/database"
	"github.com/kritlunkad/krishi-drishti-backend/router"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/ai"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/classifier"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/conversation"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/events"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/logging"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/metrics"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/middleware"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/translate"

	// Auth
	authCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/auth/controllerImp"
	authRepoImp "github.com/kritlunkad/krishi-drishti-backend/pkg/auth/repositoryImp"
	authSvcImp "github.com/kritlunkad/krishi-drishti-backend/pkg/auth/serviceImp"

	// Farmer
	farmerCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/controllerImp"
	farmerRepoImp "github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/repositoryImp"
	farmerSvcImp "github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/serviceImp"

	// Detection
	detCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/detection/controllerImp"
	detRepoImp "github.com/kritlunkad/krishi-drishti-backend/pkg/detection/repositoryImp"
	detSvcImp "github.com/kritlunkad/krishi-drishti-backend/pkg/detection/serviceImp"

	// Chat
	chatCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/chat/controllerImp"
	chatRepoImp "github.com/kritlunkad/krishi-drishti-backend/pkg/chat/repositoryImp"
	chatSvcImp "github.com/kritlunkad/krishi-drishti-backend/pkg/chat/serviceImp"

	// History
	histCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/history/controllerImp"
	histSvcImp "github.com/kritlunkad/krishi-drishti-backend/pkg/history/serviceImp"

	// KB
	kbCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/kb/controllerImp"
	kbEmbedder "github.com/kritlunkad/krishi-drishti-backend/pkg/kb/embedder"
	kbRepoImp "github.com/kritlunkad/krishi-drishti-backend/pkg/kb/repositoryImp"
	kbServiceImp "github.com/kritlunkad/krishi-drishti-backend/pkg/kb/serviceImp"

	// Health
	healthCtrlImp "github.com/kritlunkad/krishi-drishti-backend/pkg/health/controllerImp"
)

func main() {
	// registered first so it runs after every other deferred close
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// 1) Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2) Logger
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting krishi-drishti backend", zap.Any("config", cfg.Redacted()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// 3) DB + automigrate
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	// 4) Classifier, loaded once; the API stays up without it
	var model classifier.Classifier
	if remote, err := classifier.Load(ctx, classifier.Options{
		URL:          cfg.Classifier.URL,
		Model:        cfg.Classifier.Model,
		Labels:       cfg.Classifier.Labels,
		Preprocessor: cfg.Classifier.Preprocessor,
		Timeout:      cfg.Classifier.Timeout,
		MaxPixels:    cfg.Classifier.MaxPixels,
	}, logger.Named("classifier"), m); err != nil {
		logger.Error("classifier unavailable, /api/upload will fail", zap.Error(err))
		model = classifier.Unavailable(err)
	} else {
		model = remote
	}
	defer func() { _ = model.Close() }()

	// 5) Advisor (mock fallback)
	advisor, err := ai.New(ctx, cfg.Advisor, logger.Named("advisor"))
	if err != nil {
		logger.Fatal("advisor", zap.Error(err))
	}
	defer func() { _ = advisor.Close() }()
	logger.Info("advisor ready", zap.String("advisor", advisor.Name()))

	// 6) Conversation memory
	var store conversation.Store
	switch cfg.Memory.Backend {
	case "redis":
		rs, err := conversation.DialRedis(ctx, cfg.Memory.RedisURL, cfg.Memory.MaxTurns, cfg.Memory.TTL)
		if err != nil {
			logger.Fatal("conversation store", zap.Error(err))
		}
		store = rs
	default:
		store = conversation.NewMemory(cfg.Memory.MaxTurns, cfg.Memory.TTL)
	}
	defer func() { _ = store.Close() }()

	// 7) Translation
	var translator translate.Translator
	switch {
	case cfg.Translate.Provider == "google":
		g, err := translate.NewGoogle(ctx, cfg.Translate.GoogleCredentials, logger.Named("translate"), m)
		if err != nil {
			logger.Fatal("google translate", zap.Error(err))
		}
		defer func() { _ = g.Close() }()
		translator = g
	case cfg.Translate.URL == "":
		logger.Warn("TRANSLATE_URL empty, text is passed through untranslated")
		translator = translate.Identity{}
	default:
		translator = translate.NewGateway(cfg.Translate.URL, cfg.Translate.Timeout, logger.Named("translate"), m)
	}

	// 8) Domain events
	var pub events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		n, err := events.NewNATS(cfg.NATSURL, logger.Named("events"))
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			pub = n
		}
	}
	defer func() { _ = pub.Close() }()

	// 9) KB wiring; a nil embedder means keyword search
	var emb kbEmbedder.Embedder
	if c := kbEmbedder.New(cfg.KB.EmbEndpoint, cfg.KB.EmbAPIKey, cfg.KB.EmbModel); c != nil {
		emb = c
	}
	kbSvc := kbServiceImp.New(kbRepoImp.New(db), emb, logger)
	kbCtrl := kbCtrlImp.New(kbSvc, cfg.KB)

	// 10) Repos/Services/Controllers
	users := authRepoImp.New(db)
	farmers := farmerRepoImp.New(db)
	detections := detRepoImp.New(db)
	chats := chatRepoImp.New(db)

	authCtrl := authCtrlImp.NewAuthController(authSvcImp.NewAuthService(users, logger))
	farmerCtrl := farmerCtrlImp.NewFarmerController(farmerSvcImp.NewFarmerService(farmers, users, logger))
	detCtrl := detCtrlImp.NewDetectionController(
		detSvcImp.NewDetectionService(detections, users, model, translator, pub, logger),
		cfg.MaxUploadBytes,
	)
	chatCtrl := chatCtrlImp.NewChatController(chatSvcImp.NewChatService(chatSvcImp.Deps{
		Repo:       chats,
		Users:      users,
		Advisor:    advisor,
		Store:      store,
		Translator: translator,
		Notes:      kbSvc,
		NotesK:     cfg.KB.ContextChunks,
		Events:     pub,
		Metrics:    m,
	}, logger))
	histCtrl := histCtrlImp.NewHistoryController(histSvcImp.NewHistoryService(farmers, detections, chats, logger))
	hCtrl := healthCtrlImp.NewHealthCtrl(db, model, advisor.Name())

	// 11) Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	if cfg.MaxUploadBytes > 0 {
		// multipart framing on top of the image itself
		e.Use(echoMiddleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes + 1<<20)))
	}
	e.Use(middleware.RequestLogger(logger.Named("http"), m))

	r := router.New(
		e,
		authCtrl,
		farmerCtrl,
		detCtrl,
		chatCtrl,
		histCtrl,
		kbCtrl,
		hCtrl,
		m.Handler(),
		middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// 12) Start + graceful shutdown
	if err := serve(ctx, r, ":"+cfg.Port, logger); err != nil {
		logger.Error("server", zap.Error(err))
		exitCode = 1
	}
}
