package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/scheduler"
	"dealflow-backend/internal/shared/server/respond"
)

// registerStatusRoutes attaches the pipeline status endpoint.
func registerStatusRoutes(rg *gin.RouterGroup, sched *scheduler.Scheduler) {
	rg.GET("/pipeline/status", func(c *gin.Context) {
		if sched == nil {
			respond.Error(c, http.StatusServiceUnavailable, "unavailable", "scheduler not running", nil)
			return
		}
		respond.JSON(c, http.StatusOK, sched.Snapshot())
	})
}
