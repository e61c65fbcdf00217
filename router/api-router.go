package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/controller"
	"github.com/prismstudio/director-core/middleware"
)

func SetApiRouter(router *gin.Engine) {
	apiRouter := router.Group("/api")
	{
		apiRouter.GET("/status", controller.GetStatus)
		apiRouter.GET("/models", controller.ListModels)

		directorRoute := apiRouter.Group("")
		directorRoute.Use(middleware.RelayPanicRecover(), middleware.EnsureJSONBody())
		{
			directorRoute.POST("/director", controller.Director)
			directorRoute.POST("/planner/segments", controller.PlannerSegments)
			directorRoute.POST("/planner/gate", controller.PlannerGate)
		}

		monitorRoute := apiRouter.Group("/monitor")
		{
			monitorRoute.GET("/health", controller.Health)
			monitorRoute.GET("/requests", controller.RecentRequests)
		}
	}
}
