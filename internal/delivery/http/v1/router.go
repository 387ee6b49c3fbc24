package v1

import (
	"context"
	"net/http"
	"time"

	"go-recruiting-platform/config"
	"go-recruiting-platform/internal/delivery/http/middleware"
	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthChecker reports dependency status and whether the service can serve.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	TenantUC      domain.TenantUsecase
	JobUC         domain.JobUsecase
	CandidateUC   domain.CandidateUsecase
	ApplicationUC domain.ApplicationUsecase
	Health        HealthChecker
	Tokens        domain.TokenService
	Config        *config.Config
	// Registerer receives the HTTP collectors. A private registry is used when nil.
	Registerer prometheus.Registerer
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	if cfg.EnableMetrics {
		reg := deps.Registerer
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		r.Use(middleware.NewMetricsBuilder(reg).Build())
	}
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		report, healthy := deps.Health.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", report)
			return
		}
		response.Success(c, http.StatusOK, "System operational", report)
	})

	if cfg.EnableMetrics {
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if cfg.EnableSwagger {
		v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	gates := NewGates(deps.Tokens)
	limits := AuthLimits{
		Login: middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window)),
		Other: middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig(window)),
	}

	NewAuthHandler(v1, gates, limits, deps.AuthUC)
	NewTenantHandler(v1, gates, deps.TenantUC, deps.JobUC, deps.ApplicationUC)
	NewJobHandler(v1, gates, deps.JobUC, deps.ApplicationUC)
	NewCandidateHandler(v1, gates, deps.CandidateUC, deps.ApplicationUC)
	NewApplicationHandler(v1, gates, deps.ApplicationUC)

	return r
}
