package controller

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common"
	dbmodel "github.com/prismstudio/director-core/model"
)

// Health handles GET /api/monitor/health. The service is considered up as long
// as it can answer; backing stores report their own state.
func Health(c *gin.Context) {
	components := gin.H{}

	dbStatus := "ok"
	if err := dbmodel.Ping(c.Request.Context()); err != nil {
		dbStatus = "down"
	}
	components["database"] = dbStatus

	redisStatus := "disabled"
	if common.RedisEnabled && common.RDB != nil {
		redisStatus = "ok"
		if err := common.RDB.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "down"
		}
	}
	components["redis"] = redisStatus

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"uptime_seconds": time.Now().Unix() - common.StartTime,
		"goroutines":     runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
		"components": components,
	})
}

// RecentRequests handles GET /api/monitor/requests, the audit-log tail.
func RecentRequests(c *gin.Context) {
	logs, err := dbmodel.SearchRequestLogs(c.Query("mode"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}
