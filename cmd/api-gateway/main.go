package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/stage-docs-api/api/swagger"
	"github.com/noah-isme/stage-docs-api/internal/handler"
	internalmiddleware "github.com/noah-isme/stage-docs-api/internal/middleware"
	"github.com/noah-isme/stage-docs-api/internal/models"
	"github.com/noah-isme/stage-docs-api/internal/repository"
	"github.com/noah-isme/stage-docs-api/internal/service"
	"github.com/noah-isme/stage-docs-api/pkg/assets"
	"github.com/noah-isme/stage-docs-api/pkg/cache"
	"github.com/noah-isme/stage-docs-api/pkg/config"
	"github.com/noah-isme/stage-docs-api/pkg/database"
	"github.com/noah-isme/stage-docs-api/pkg/document"
	"github.com/noah-isme/stage-docs-api/pkg/jobs"
	"github.com/noah-isme/stage-docs-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/stage-docs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/stage-docs-api/pkg/middleware/requestid"
	"github.com/noah-isme/stage-docs-api/pkg/storage"
)

// @title Stage Docs API
// @version 1.0.0
// @description Official PDF documents for internship assignments and evaluations
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Documents.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, rendering without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Documents.CacheTTL, logr, redisClient != nil)

	assignmentRepo := repository.NewAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	jobRepo := repository.NewDocumentJobRepository(db)

	verifyURL := cfg.PublicBaseURL + cfg.APIPrefix + "/documents/verify"
	sealSigner := storage.NewSignedURLSigner(cfg.Documents.SealSecret, 0)
	sealSvc := service.NewSealService(sealSigner, assignmentRepo, evaluationRepo, verifyURL, logr)

	opts := document.Options{
		Assets:    assets.NewRouter(cfg.Documents.AssetDir, nil),
		EmblemRef: cfg.Documents.EmblemPath,
		LogoRefs: map[string]string{
			document.KindAssignmentOrder:     cfg.Documents.AssignmentLogo,
			document.KindTrainingCertificate: cfg.Documents.CertificateLogo,
		},
		AssetTimeout:   cfg.Documents.AssetTimeout,
		IssuePlace:     cfg.Documents.IssuePlace,
		Logger:         logr,
		OnAssetOmitted: metricsSvc.RecordAssetOmitted,
	}
	if cfg.Documents.QREnabled {
		opts.Seal = sealSvc.Content
	}
	generator := document.NewGenerator(opts)

	documentSvc := service.NewDocumentService(assignmentRepo, evaluationRepo, generator, cacheSvc, metricsSvc, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		Audience:  cfg.Auth.Audience,
	})

	var jobHandler *handler.DocumentJobHandler
	if cfg.Archive.Enabled {
		archiveSvc, queue, err := startArchiveJobs(ctx, cfg, jobRepo, documentSvc, metricsSvc, logr)
		if err != nil {
			logr.Fatal("failed to start document jobs", zap.Error(err))
		}
		defer queue.Stop()
		jobHandler = handler.NewDocumentJobHandler(archiveSvc)
	}

	documentHandler := handler.NewDocumentHandler(documentSvc, sealSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, cacheRepo, redisClient))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/documents/verify/:token", documentHandler.VerifySeal)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.Use(internalmiddleware.RequireRoles(models.RoleAuthenticated, models.RoleServiceRole))

	secured.GET("/assignments", documentHandler.ListAssignments)
	secured.GET("/assignments/:id/order.pdf", documentHandler.AssignmentOrder)
	secured.GET("/evaluations", documentHandler.ListEvaluations)
	secured.GET("/evaluations/:id/certificate.pdf", documentHandler.TrainingCertificate)
	secured.POST("/documents/assignment-order", documentHandler.RenderAssignmentOrder)
	secured.POST("/documents/certificate", documentHandler.RenderCertificate)

	if jobHandler != nil {
		secured.POST("/documents/jobs", jobHandler.Create)
		secured.GET("/documents/jobs/:id", jobHandler.Status)
		// The signed token is the credential.
		api.GET("/documents/download/:token", jobHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func startArchiveJobs(ctx context.Context, cfg *config.Config, jobRepo *repository.DocumentJobRepository, renderer *service.DocumentService, metrics *service.MetricsService, logr *zap.Logger) (*service.ArchiveJobService, *jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Archive.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Archive.SignedURLSecret, cfg.Archive.SignedURLTTL)

	archiveSvc := service.NewArchiveJobService(jobRepo, nil, store, signer, metrics, logr, service.ArchiveJobConfig{
		MaxBatchSize:    cfg.Archive.MaxBatchSize,
		DownloadURL:     cfg.PublicBaseURL + cfg.APIPrefix + "/documents/download",
		ResultTTL:       cfg.Archive.SignedURLTTL,
		CleanupInterval: cfg.Archive.CleanupInterval,
	})
	worker := service.NewDocumentJobWorker(archiveSvc, renderer, logr)

	queue := jobs.NewQueue("document-jobs", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Archive.WorkerConcurrency,
		BufferSize: 64,
		MaxRetries: cfg.Archive.WorkerRetries,
		RetryDelay: 2 * time.Second,
		JobTimeout: 5 * time.Minute,
		OnDead: func(job jobs.Job, err error) {
			archiveSvc.Fail(job.ID, err)
		},
		Logger: logr,
	})
	queue.Start(ctx)
	archiveSvc.SetQueue(queue)
	archiveSvc.RecoverPendingJobs(ctx)
	archiveSvc.StartCleanup(ctx)
	return archiveSvc, queue, nil
}

func readinessChecks(db *sqlx.DB, cacheRepo *repository.CacheRepository, client *redis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(db.PingContext),
	}
	if client != nil {
		checks["redis"] = cacheRepo
	}
	return checks
}
