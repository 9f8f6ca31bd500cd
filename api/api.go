package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carterahq/cartera"
	"github.com/carterahq/cartera/api/middleware"
	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/internal/telemetry"
)

type Api struct {
	cartera *cartera.Cartera
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/thresholds", a.CreateThreshold)
	router.GET("/thresholds/:tenant_id", a.GetActiveThresholds)
	router.DELETE("/thresholds/:tenant_id/:threshold_id", a.DisableThreshold)

	router.POST("/attachment-rules", a.CreateAttachmentRule)
	router.GET("/attachment-rules/:tenant_id", a.GetAttachmentRules)

	router.POST("/campaigns/dispatch", a.DispatchCampaign)
	router.POST("/campaigns/schedule", a.ScheduleCampaign)
	router.DELETE("/campaigns/schedule/:execution_id", a.CancelScheduledCampaign)
	router.GET("/executions/:execution_id", a.GetExecution)
	router.GET("/executions/:execution_id/stats", a.GetExecutionStats)
	router.GET("/executions/:execution_id/audit-log", a.GetExecutionAuditLog)

	router.GET("/control-tower/:tenant_id", a.GetControlTower)
	router.GET("/scheduler-lock/:tenant_id", a.GetSchedulerLock)

	router.GET("/metrics", gin.WrapH(telemetry.Handler()))
	return a.router
}

func NewAPI(c *cartera.Cartera) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{cartera: c, router: r}
}
