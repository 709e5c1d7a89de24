package api

import (
	"context"
	"log"
	"time"

	authDelivery "reliance-backend/internal/auth/delivery"
	authUsecase "reliance-backend/internal/auth/usecase"
	taskDelivery "reliance-backend/internal/task/delivery"
	taskUsecasePkg "reliance-backend/internal/task/usecase"
	zoneDelivery "reliance-backend/internal/valuezone/delivery"
	zoneUsecasePkg "reliance-backend/internal/valuezone/usecase"
	"reliance-backend/pkg/config"
	"reliance-backend/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// ReadinessCheck reports whether a backing service is reachable
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	config      *config.Config
	authUsecase authUsecase.AuthUsecase
	redis       *redis.Client
	checks      map[string]ReadinessCheck
	startedAt   time.Time

	authHandler      *authDelivery.AuthHandler
	taskHandler      *taskDelivery.TaskHandler
	valueZoneHandler *zoneDelivery.ValueZoneHandler
}

// NewHandler wires the HTTP layer. redisClient may be nil, in which case rate
// limiting stays in process.
func NewHandler(cfg *config.Config, authUc authUsecase.AuthUsecase, taskUc taskUsecasePkg.TaskUsecase, zoneUc zoneUsecasePkg.ValueZoneUsecase, redisClient *redis.Client, checks map[string]ReadinessCheck) *Handler {
	if len(cfg.SharedSecrets) == 0 {
		log.Println("[API] Warning: SHARED_SECRETS is empty, every protected request will be rejected")
	}
	if checks == nil {
		checks = map[string]ReadinessCheck{}
	}

	return &Handler{
		config:           cfg,
		authUsecase:      authUc,
		redis:            redisClient,
		checks:           checks,
		startedAt:        time.Now(),
		authHandler:      authDelivery.NewAuthHandler(authUc),
		taskHandler:      taskDelivery.NewTaskHandler(taskUc),
		valueZoneHandler: zoneDelivery.NewValueZoneHandler(zoneUc),
	}
}

// Router builds the gin engine with the global middleware chain and all routes
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog())
	r.Use(cors.New(h.corsConfig()))
	r.Use(h.rateLimiter())

	SetupRoutes(r, h)
	return r
}

func (h *Handler) corsConfig() cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", authDelivery.SharedSecretHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := h.config.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials cannot be combined with a literal wildcard
		corsCfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

func (h *Handler) rateLimiter() gin.HandlerFunc {
	perMinute := h.config.RateLimitPerMinute
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	if h.redis != nil {
		limiter := middleware.NewDistributedRateLimiter(h.redis, h.config.ServiceName)
		return limiter.Middleware("api", &middleware.RateLimit{
			Rate:   perMinute,
			Window: time.Minute,
		})
	}

	burst := h.config.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return middleware.RateLimiter(rate.Limit(float64(perMinute)/60), burst)
}
