package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and process uptime
// GET /v1/health
func (h *Handler) Health(c *gin.Context) {
	uptime := time.Since(h.startedAt)
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"service":       h.config.ServiceName,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"uptime":        formatUptime(uptime),
		"uptimeSeconds": int64(uptime.Seconds()),
	})
}

// Ready runs every readiness check and answers 503 if any fails
// GET /v1/health/ready
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, d/time.Second)
}
