package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports backend reachability. The postgres pool satisfies it;
// the in-memory store has nothing to check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadinessHandler returns the GET /health/ready handler. A nil pinger
// means the store needs no connectivity check.
func ReadinessHandler(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := make(map[string]string)
		healthy := true

		if pinger != nil {
			if err := pinger.Ping(c.Request.Context()); err != nil {
				checks["database"] = "error"
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}

		status := "ok"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{"status": status, "checks": checks})
	}
}
