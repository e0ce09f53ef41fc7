package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/truthlens/internal/application"
	appanalysis "github.com/bryanwahyu/truthlens/internal/application/analysis"
	"github.com/bryanwahyu/truthlens/internal/config"
	"github.com/bryanwahyu/truthlens/internal/domain/files"
	aiopenai "github.com/bryanwahyu/truthlens/internal/infra/ai/openai"
	"github.com/bryanwahyu/truthlens/internal/infra/executor/command"
	"github.com/bryanwahyu/truthlens/internal/infra/extract"
	"github.com/bryanwahyu/truthlens/internal/infra/httpserver"
	"github.com/bryanwahyu/truthlens/internal/infra/storage"
	"github.com/bryanwahyu/truthlens/internal/middleware"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 5 * time.Second
)

type uploadStore interface {
	files.Store
	middleware.HealthChecker
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx := context.Background()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage init error", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	runner := command.NewRunner(logger.Named("exec"))
	extractor := extract.New(extract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.Lang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, runner, logger.Named("extract"))

	aiClient := aiopenai.NewClient(aiConfig(cfg), logger.Named("ai"))

	metrics := middleware.NewMetrics(application.SystemClock{})

	svc := &appanalysis.Service{
		AI:        aiClient,
		Extractor: extractor,
		Store:     store,
		Clock:     application.SystemClock{},
		Recorder:  metrics,
		Log:       logger.Named("analysis"),
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		Version:        version,
		MaxUploadSize:  cfg.Upload.MaxFileSize,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        metrics,
		Checkers:       map[string]middleware.HealthChecker{"storage": store},
		Logger:         logger.Named("http"),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("version", version),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("text_model", cfg.AI.TextModel))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (uploadStore, error) {
	if cfg.Storage.Driver == "minio" {
		m := cfg.Storage.Minio
		return storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:   m.Endpoint,
			Region:     m.Region,
			BucketName: m.BucketName,
			AccessKey:  m.AccessKey,
			SecretKey:  m.SecretKey,
			UseSSL:     m.UseSSL,
			Prefix:     m.Prefix,
			CacheDir:   cfg.Upload.Dir,
			MaxSize:    cfg.Upload.MaxFileSize,
		}, logger.Named("storage"))
	}
	return storage.NewLocal(cfg.Upload.Dir, cfg.Upload.MaxFileSize, logger.Named("storage"))
}

func aiConfig(cfg *config.Config) aiopenai.Config {
	c := aiopenai.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		TextModel:   cfg.AI.TextModel,
		VisionModel: cfg.AI.VisionModel,
	}
	if cfg.AI.Timeout > 0 {
		c.HTTPClient = &http.Client{Timeout: cfg.AI.Timeout}
	}
	return c
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
