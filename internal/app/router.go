package app

import (
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/api/handlers"
	"securevet.io/securevet/internal/api/middleware"
	"securevet.io/securevet/internal/config"
	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/metrics"
)

// Public routes that do NOT require JWT authentication.
var publicPrefixes = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/auth/forgot-password",
	"/health/",
	"/metrics",
}

// adminPrefixes are routes restricted to the admin role.
var adminPrefixes = []string{
	"/api/v1/admin/",
}

// authRatePrefixes are the credential endpoints throttled per client IP.
var authRatePrefixes = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/auth/forgot-password",
}

func newRouter(cfg *config.Config, server *handlers.Server, pinger handlers.Pinger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(buildCORSConfig(cfg)))
	router.Use(httpMetrics())
	router.Use(rateLimitAuth(cfg.RateLimit))
	router.Use(jwtSkipPublic([]byte(cfg.Security.JWTSecret)))
	router.Use(rbacAdminRoutes())
	router.Use(middleware.MustOpenAPIValidator("/api/v1"))

	registerRoutes(router, server, pinger)
	return router
}

func registerRoutes(router *gin.Engine, server *handlers.Server, pinger handlers.Pinger) {
	router.GET("/health/live", server.GetLiveness)
	router.GET("/health/ready", handlers.ReadinessHandler(pinger))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", server.Register)
	auth.POST("/login", server.Login)
	auth.POST("/forgot-password", server.ForgotPassword)
	auth.GET("/me", server.CurrentUser)
	auth.PUT("/profile", server.UpdateProfile)
	auth.PUT("/password", server.ChangePassword)
	auth.POST("/2fa/setup", server.TwoFactorSetup)
	auth.POST("/2fa/enable", server.TwoFactorEnable)
	auth.POST("/2fa/disable", server.TwoFactorDisable)

	appts := v1.Group("/appointments")
	appts.GET("", server.ListAppointments)
	appts.POST("", server.RequestAppointment)
	appts.POST("/book",
		middleware.RequireCapability(domain.CapBookForClient), server.BookForClient)
	appts.GET("/:id", server.GetAppointment)
	appts.POST("/:id/claim", server.ClaimAppointment)
	appts.POST("/:id/complete", server.CompleteAppointment)

	pets := v1.Group("/pets")
	pets.GET("", server.ListPets)
	pets.POST("", server.CreatePet)
	pets.GET("/:id", server.GetPet)

	records := v1.Group("/records")
	records.GET("", server.ListRecords)
	records.POST("",
		middleware.RequireCapability(domain.CapCreateRecord), server.CreateRecord)

	admin := v1.Group("/admin")
	admin.GET("/users", server.ListUsers)
	admin.POST("/users", server.CreateUser)
	admin.PUT("/users/:id", server.UpdateUser)
	admin.DELETE("/users/:id", server.DeleteUser)
	admin.GET("/audit-logs", server.ListAuditLogs)
	admin.GET("/password-requests", server.ListPasswordRequests)
	admin.POST("/password-requests/:id/resolve", server.ResolvePasswordRequest)
}

// buildCORSConfig derives the CORS policy from server config. Wildcard
// origins are stripped unless the unsafe flag is set explicitly, and
// allow-all never ships with credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = cfg.Server.AllowCredentials
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")

	if cfg.Server.UnsafeAllowAllOrigins {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
		return corsCfg
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		if o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public routes.
func jwtSkipPublic(signingKey []byte) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(signingKey)
	return func(c *gin.Context) {
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		jwtMw(c)
	}
}

// rbacAdminRoutes returns middleware restricting admin endpoints to the admin role.
func rbacAdminRoutes() gin.HandlerFunc {
	adminMw := middleware.RequireRoles(domain.RoleAdmin)
	return func(c *gin.Context) {
		for _, prefix := range adminPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				adminMw(c)
				return
			}
		}
		c.Next()
	}
}

// rateLimitAuth throttles the credential endpoints per client IP.
func rateLimitAuth(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := middleware.NewRateLimiter(cfg.Requests, cfg.Window)
	limitMw := limiter.Middleware()
	return func(c *gin.Context) {
		for _, prefix := range authRatePrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				limitMw(c)
				return
			}
		}
		c.Next()
	}
}

// httpMetrics records per-route request counts after the handler runs.
func httpMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
