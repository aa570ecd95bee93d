package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"realtorcrm/internal/config"
	"realtorcrm/internal/domain/crm"
	"realtorcrm/internal/middleware"
	jwtsvc "realtorcrm/internal/pkg/jwt"
)

// newRouter assembles the public HTTP surface: health and metrics at the
// root, the CRM API under /api/v1 behind JWT auth.
func newRouter(cfg *config.Config, log *zap.Logger, db *gorm.DB, jwt *jwtsvc.Service, handler *crm.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger(log.Named("http")))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics",
		middleware.InternalTokenAuth(cfg.MetricsToken, cfg.MetricsAllowedIPs, log.Named("metrics")),
		gin.WrapH(promhttp.Handler()),
	)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwt))
	crm.RegisterRoutes(v1, handler)

	return r
}
