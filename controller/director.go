package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common"
	"github.com/prismstudio/director-core/common/logger"
	"github.com/prismstudio/director-core/common/tokenizer"
	dbmodel "github.com/prismstudio/director-core/model"
	relay "github.com/prismstudio/director-core/relay/controller"
	relaymodel "github.com/prismstudio/director-core/relay/model"
)

// Director handles POST /api/director, the single entry point for all three
// generation modes.
func Director(c *gin.Context) {
	startTime := time.Now()
	requestId := c.GetString(logger.RequestIdKey)

	body, err := common.GetRequestBody(c)
	if err != nil {
		errResp := relaymodel.NewInvalidBodyError()
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}

	result, errResp := relay.Direct(c.Request.Context(), c.Request.Header, body, requestId)
	durationMs := time.Since(startTime).Milliseconds()

	if errResp != nil {
		logger.Errorf(c.Request.Context(), "director request failed: %s (%s)", errResp.Message, errResp.Type)
		recordAudit(requestId, modeFromBody(body), errResp.Provider, "", errResp.StatusCode, false, false, durationMs, body)
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}

	stage := ""
	if result.Result != nil {
		stage = result.Result.Stage
	}
	degraded := result.Result == nil && result.FallbackText != ""
	recordAudit(requestId, string(result.Mode), result.Provider, stage, http.StatusOK, true, degraded, durationMs, body)
	c.JSON(http.StatusOK, result)
}

// failureResult keeps the failure shape aligned with the success contract:
// same top-level envelope, error fields populated instead of a result.
func failureResult(errResp *relaymodel.ErrorWithStatusCode) *relaymodel.DirectorResult {
	return &relaymodel.DirectorResult{
		Success:    false,
		Error:      errResp.Message,
		Provider:   errResp.Provider,
		StatusCode: errResp.StatusCode,
		Details:    errResp.Error,
	}
}

// modeFromBody recovers the mode for the audit row even when validation
// rejected the request.
func modeFromBody(body []byte) string {
	var probe struct {
		Mode string `json:"mode"`
	}
	_ = json.Unmarshal(body, &probe)
	return probe.Mode
}

func recordAudit(requestId, mode, provider, stage string, statusCode int, success, degraded bool, durationMs int64, body []byte) {
	dbmodel.RecordRequestLog(&dbmodel.RequestLog{
		RequestId:    requestId,
		Mode:         mode,
		Provider:     provider,
		Stage:        stage,
		StatusCode:   statusCode,
		Success:      success,
		Degraded:     degraded,
		DurationMs:   durationMs,
		PromptTokens: tokenizer.CountTokens(string(body)),
	})
}
