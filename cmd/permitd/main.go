package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/permit-readiness/internal/async"
	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
	"github.com/joseph-ayodele/permit-readiness/internal/httpapi"
	"github.com/joseph-ayodele/permit-readiness/internal/ingest"
	"github.com/joseph-ayodele/permit-readiness/internal/logging"
	"github.com/joseph-ayodele/permit-readiness/internal/repository"
	"github.com/joseph-ayodele/permit-readiness/internal/server"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
	"github.com/joseph-ayodele/permit-readiness/internal/storage"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(2)
	}
	logger := logging.Init(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		os.Exit(1)
	}
	defer server.CloseDB(db, logger)

	if err := server.PingDB(ctx, db, logger, 5*time.Second); err != nil {
		os.Exit(1)
	}

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	tpl, err := templates.Load(cfg.Engine.TemplateDir, logger)
	if err != nil {
		logger.Error("failed to load checklist templates", "error", err)
		os.Exit(1)
	}
	if cfg.Engine.TemplateDir != "" {
		go func() {
			if err := tpl.Watch(ctx, 500*time.Millisecond); err != nil {
				logger.Error("template watcher stopped", "error", err)
			}
		}()
	}

	svc := permit.NewService(permit.Deps{
		Projects:    repository.NewProjectRepository(db, logger),
		Documents:   repository.NewDocumentRepository(db, logger),
		Validations: repository.NewValidationRepository(db, logger),
		Store:       store,
		Templates:   tpl,
		Extractor:   extract.NewExtractor(extract.Config{MaxPages: cfg.Engine.MaxExtractPages}, logger),
	}, logger, permit.WithMaxUploadBytes(cfg.Server.MaxUploadBytes))

	queue := async.NewRevalidationQueue(svc.Revalidator(), logger,
		async.WithWorkers(cfg.Engine.QueueWorkers),
		async.WithQueueSize(cfg.Engine.QueueSize),
		async.WithProcessTimeout(cfg.Engine.ValidateTimeout),
	)
	svc.SetQueue(queue)

	ingestor := ingest.NewFSIngestor(svc, logger)
	if cfg.Engine.WatchDir != "" {
		projectID, err := uuid.Parse(cfg.Engine.WatchProjectID)
		if err != nil {
			logger.Error("WATCH_PROJECT_ID must be a UUID", "value", cfg.Engine.WatchProjectID)
			os.Exit(2)
		}
		go func() {
			err := ingestor.Watch(ctx, projectID, cfg.Engine.WatchDir, ingest.WatchConfig{InitialScan: true, Debounce: time.Second})
			if err != nil {
				logger.Error("directory watcher stopped", "dir", cfg.Engine.WatchDir, "error", err)
			}
		}()
	}

	errCh := make(chan error, 2)

	grpcServer, healthServer := server.NewGRPCServer(server.NewPermitServer(svc, ingestor, tpl, logger), logger)
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		logger.Info("grpc listening", "addr", cfg.Server.GRPCAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		handler := httpapi.NewHandler(svc, tpl, httpapi.Options{
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			Health:         func(ctx context.Context) error { return db.HealthCheck(ctx, 2*time.Second) },
			Logger:         logger,
		})
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           httpapi.NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("http listening", "addr", cfg.Server.HTTPAddr)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}
	grpcServer.GracefulStop()
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
