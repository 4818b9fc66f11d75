package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/metaqual/internal/config"
	dbRedis "github.com/kailas-cloud/metaqual/internal/db/redis"
	"github.com/kailas-cloud/metaqual/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/metaqual/internal/logger"
	"github.com/kailas-cloud/metaqual/internal/metrics"
	aggregationrepo "github.com/kailas-cloud/metaqual/internal/repository/aggregation"
	collectionrepo "github.com/kailas-cloud/metaqual/internal/repository/collection"
	timelinerepo "github.com/kailas-cloud/metaqual/internal/repository/timeline"
	chiTransport "github.com/kailas-cloud/metaqual/internal/transport/chi"
	"github.com/kailas-cloud/metaqual/internal/transport/metadataset"
	healthuc "github.com/kailas-cloud/metaqual/internal/usecase/health"
	qualityuc "github.com/kailas-cloud/metaqual/internal/usecase/quality"
	snapshotuc "github.com/kailas-cloud/metaqual/internal/usecase/snapshot"
	"github.com/kailas-cloud/metaqual/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting metaqual API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Index.Addrs),
	)

	// Search index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Password: cfg.Index.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search index not ready", zap.Error(err))
	}
	logger.Info("Connected to search index")

	// Timeline database
	timelineDB, err := timelinerepo.Open(cfg.Timeline.DSN)
	if err != nil {
		logger.Fatal("Failed to open timeline database", zap.Error(err))
	}
	defer func() { _ = timelineDB.Close() }()

	timelineStore := timelinerepo.New(timelineDB)
	if err := timelineStore.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure timeline schema", zap.Error(err))
	}

	// Attribute catalog and its label source. Labels must be reachable at
	// startup so a matrix is never served with unresolvable captions.
	cat := catalog.Default()
	labels := metadataset.New(metadataset.Config{
		BaseURL:     cfg.Labels.BaseURL,
		MetadataSet: cfg.Labels.MetadataSet,
		CacheTTL:    time.Duration(cfg.Labels.CacheTTLSec) * time.Second,
		Timeout:     time.Duration(cfg.Labels.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	if _, err := labels.Labels(ctx); err != nil {
		logger.Fatal("Label service not reachable", zap.Error(err))
	}
	logger.Info("Label service reachable",
		zap.String("metadata_set", cfg.Labels.MetadataSet))

	// Repositories
	collRepo := collectionrepo.New(store, cfg.Index.CollectionsIndex).
		WithMaxNodes(cfg.Index.MaxTreeNodes)
	aggRepo := aggregationrepo.New(store, cfg.Index.MaterialsIndex).
		WithBucketLimit(cfg.Index.BucketLimit)

	// Use case services
	qualitySvc := qualityuc.New(collRepo, aggRepo, labels, timelineStore, cat, logger)
	healthSvc := healthuc.New(store, timelineStore)

	// Snapshot worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.Snapshot.Enabled {
		worker := snapshotuc.NewWorker(
			qualitySvc, cfg.Snapshot.Roots,
			time.Duration(cfg.Snapshot.IntervalSec)*time.Second, logger,
		)
		worker.Start(workerCtx)
		logger.Info("Snapshot worker started",
			zap.Int("roots", len(cfg.Snapshot.Roots)),
			zap.Int("interval_sec", cfg.Snapshot.IntervalSec))
	}

	// HTTP server
	server := chiTransport.NewServer(qualitySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}
