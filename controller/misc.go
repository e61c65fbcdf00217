package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common"
	"github.com/prismstudio/director-core/common/config"
	relaymodel "github.com/prismstudio/director-core/relay/model"
)

// GetStatus handles GET /api/status.
func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"system_name":   config.SystemName,
			"version":       common.Version,
			"start_time":    common.StartTime,
			"providers":     relaymodel.SupportedProviders,
			"plan_provider": config.PlanProvider,
		},
	})
}
