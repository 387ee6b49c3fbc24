package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-recruiting-platform/config"
	_ "go-recruiting-platform/docs" // Important for Swagger
	v1 "go-recruiting-platform/internal/delivery/http/v1"
	"go-recruiting-platform/internal/repository/document"
	"go-recruiting-platform/internal/scope"
	"go-recruiting-platform/internal/store/backend"
	"go-recruiting-platform/internal/usecase"
	"go-recruiting-platform/pkg/auth"
	"go-recruiting-platform/pkg/logger"
	"go-recruiting-platform/pkg/password"
	"go-recruiting-platform/pkg/redis"
	"go-recruiting-platform/pkg/security"
	"go-recruiting-platform/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
)

// @title           Recruiting Platform API
// @version         1.0
// @description     Multi-tenant recruiting platform: auth, tenants, jobs, profiles and applications.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	secLog := security.InitSecurityLogger("recruiting-platform", cfg.AppEnv)
	defer secLog.Sync()
	logger.Log.Info("Starting recruiting platform", "port", cfg.Port, "store", cfg.StoreDriver)

	ctx := context.Background()

	// 3. Setup Store
	st, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 4. Setup Redis (optional)
	if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := document.NewUserRepository(st)
	tenantRepo := document.NewTenantRepository(st)
	jobRepo := document.NewJobRepository(st)
	profileRepo := document.NewCandidateRepository(st)
	applicationRepo := document.NewApplicationRepository(st)

	// 6. Setup Auth
	tokens, err := auth.NewTokenService(auth.Config{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Log.Error("Failed to configure tokens", "error", err)
		os.Exit(1)
	}
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	guard := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, secLog)

	// 7. Setup UseCases
	validate := validation.New()
	resolver := scope.NewResolver(jobRepo, userRepo)
	authUC := usecase.NewAuthUsecase(userRepo, tokens, hasher, guard, validate)
	tenantUC := usecase.NewTenantUsecase(tenantRepo, userRepo, tokens, resolver, validate)
	jobUC := usecase.NewJobUsecase(jobRepo, tenantRepo, resolver, validate)
	candidateUC := usecase.NewCandidateUsecase(profileRepo, userRepo, validate)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, tenantRepo, profileRepo, userRepo, resolver, validate)
	healthUC := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"store": st,
		"redis": usecase.PingFunc(redis.HealthCheck),
	})

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		TenantUC:      tenantUC,
		JobUC:         jobUC,
		CandidateUC:   candidateUC,
		ApplicationUC: applicationUC,
		Health:        healthUC,
		Tokens:        tokens,
		Config:        cfg,
		Registerer:    prometheus.DefaultRegisterer,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
