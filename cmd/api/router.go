package api

import (
	authDelivery "reliance-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	v1 := r.Group("/v1")
	{
		// Health check (no auth required)
		health := v1.Group("/health")
		{
			health.GET("", h.Health)
			health.GET("/ready", h.Ready)
			health.GET("/readiness", h.Ready)
		}

		protected := v1.Group("")
		protected.Use(authDelivery.SharedSecretMiddleware(h.config.SharedSecrets))

		requireAuth := authDelivery.AuthMiddleware(h.authUsecase)

		// Auth routes (shared secret only, /me also needs a token)
		h.authHandler.RegisterRoutes(protected.Group("/auth"), requireAuth)

		tasks := protected.Group("/tasks")
		tasks.Use(requireAuth)
		h.taskHandler.RegisterRoutes(tasks)

		zones := protected.Group("/value-zones")
		zones.Use(requireAuth)
		h.valueZoneHandler.RegisterRoutes(zones)
	}
}
