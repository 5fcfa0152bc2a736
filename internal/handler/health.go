package handler

import (
	"context"
	"net/http"
	"time"

	"ferrepos/internal/infra"
	"ferrepos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health returns a JSON health check response.
// Checks Redis connectivity and reports the backend circuit breaker; never
// exposes credentials or internals. rdb may be nil when running without Redis.
func Health(rdb *redis.Client, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		status := http.StatusOK

		if rdb != nil {
			redisStatus := "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
				status = http.StatusServiceUnavailable
			}
			body["redis"] = redisStatus
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueRecibos); err == nil {
				body["recibos_dlq"] = n
			}
		} else {
			body["redis"] = "disabled"
		}

		backend := "unknown"
		if cb != nil {
			backend = cb.State().String()
		}
		body["backend"] = backend
		body["ok"] = status == http.StatusOK

		c.JSON(status, body)
	}
}
