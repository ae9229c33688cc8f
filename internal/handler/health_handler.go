// Package handler provides HTTP request handlers for the application.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerHealth reports the message broker connection state.
type BrokerHealth interface {
	IsHealthy() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	database  Pinger
	cache     Pinger
	publisher BrokerHealth
}

// NewHealthHandler creates a new HealthHandler instance. cache and publisher
// may be nil when those integrations are disabled.
func NewHealthHandler(database Pinger, cache Pinger, publisher BrokerHealth) *HealthHandler {
	return &HealthHandler{
		database:  database,
		cache:     cache,
		publisher: publisher,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks the database, cache and broker. Disabled
// integrations are reported but do not fail the probe.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	body := gin.H{"time": time.Now()}
	healthy := true

	switch {
	case h.database == nil:
		body["database"] = "disabled"
	case h.database.Ping(ctx) != nil:
		body["database"] = "unhealthy"
		healthy = false
	default:
		body["database"] = "healthy"
	}

	switch {
	case h.cache == nil:
		body["redis"] = "disabled"
	case h.cache.Ping(ctx) != nil:
		body["redis"] = "unhealthy"
		healthy = false
	default:
		body["redis"] = "healthy"
	}

	switch {
	case h.publisher == nil:
		body["rabbitmq"] = "disabled"
	case !h.publisher.IsHealthy():
		body["rabbitmq"] = "unhealthy"
		healthy = false
	default:
		body["rabbitmq"] = "healthy"
	}

	if !healthy {
		body["status"] = "DOWN"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "UP"
	c.JSON(http.StatusOK, body)
}
