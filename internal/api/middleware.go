package api

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ChiefGuap/divvit2.0/internal/auth"
	"github.com/ChiefGuap/divvit2.0/internal/service"
)

const actorKey = "actor"

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "divvit_http_requests_total",
	Help: "HTTP requests by route and status.",
}, []string{"method", "route", "status"})

var httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "divvit_http_request_duration_seconds",
	Help:    "HTTP request latency by route.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// requireAuth validates the Bearer token and stashes the actor on the
// context for handlers to pick up.
func requireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			writeError(c, auth.ErrMissingToken)
			c.Abort()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(c, auth.ErrMissingToken)
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, service.Actor{UserID: claims.UserID, DisplayName: claims.DisplayName})
		c.Next()
	}
}

func actorFrom(c *gin.Context) service.Actor {
	return c.MustGet(actorKey).(service.Actor)
}

// requestLogger logs one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// metrics records request counts and latency per route pattern.
func metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
