package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prismstudio/director-core/common"
	"github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/common/logger"
	"github.com/prismstudio/director-core/common/tokenizer"
	"github.com/prismstudio/director-core/middleware"
	"github.com/prismstudio/director-core/model"
	"github.com/prismstudio/director-core/router"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println("failed to load .env file: " + err.Error())
	}
	logger.SetupLogger()
	logger.SysLog(fmt.Sprintf("%s %s started", config.SystemName, common.Version))
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.DebugEnabled {
		logger.SysLog("running in debug mode")
	}

	config.Policy = config.BuildServerPolicy()
	for provider := range config.ProviderEnvKeys {
		if config.Policy.SelfCredentialed(provider) {
			logger.SysLog("server credential loaded for " + provider)
		}
	}

	if err := model.InitDB(); err != nil {
		logger.FatalLog("failed to initialize database: " + err.Error())
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.SysError("failed to close database: " + err.Error())
		}
	}()

	if err := common.InitRedisClient(); err != nil {
		logger.FatalLog("failed to initialize Redis: " + err.Error())
	}
	tokenizer.InitTokenEncoder()

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middleware.RequestId())
	middleware.SetUpLogger(server)
	server.Use(middleware.CORS())

	router.SetRouter(server)
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	logger.SysLog("listening on port " + port)
	if err := server.Run(":" + port); err != nil {
		logger.FatalLog("failed to start HTTP server: " + err.Error())
	}
}
