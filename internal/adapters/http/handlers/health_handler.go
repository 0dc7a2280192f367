package handlers

import (
	"time"

	"claims-dashboard/internal/config"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves the unauthenticated liveness and discovery routes
type HealthHandler struct {
	cfg     *config.Config
	started time.Time
}

// NewHealthHandler records the process start so /health can report uptime
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg, started: time.Now()}
}

// Root tells a browser or load balancer that the claims API is up
// @Summary Service banner
// @Description Names the service, its run mode and where the API docs live
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "claims-dashboard",
		"mode":    h.cfg.AppMode,
		"demo":    h.cfg.DemoMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck pings the claims database. Anything but a live connection
// answers 503 so orchestrators stop routing here.
// @Summary Readiness check
// @Description Reports database reachability and process uptime
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":   "ok",
		"database": "up",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	}
	if err := config.HealthCheck(); err != nil {
		body["status"] = "degraded"
		body["database"] = "down"
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}

// APIInfo lists the resource groups mounted under /api/v1
// @Summary API v1 index
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version":   "v1",
		"resources": []string{"auth", "claims", "providers", "upload", "users", "dashboard"},
	})
}
