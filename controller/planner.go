package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common"
	relaymodel "github.com/prismstudio/director-core/relay/model"
	"github.com/prismstudio/director-core/relay/planner"
)

// PlannerSegments handles POST /api/planner/segments: deterministic beat
// segmentation of a script, no provider call involved. Clients use it to
// preview the energy curve and gate questions before a video_plan request.
func PlannerSegments(c *gin.Context) {
	body, err := common.GetRequestBody(c)
	if err != nil {
		errResp := relaymodel.NewInvalidBodyError()
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}
	var req struct {
		ScriptText string `json:"script_text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		errResp := relaymodel.NewInvalidBodyError()
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}
	if strings.TrimSpace(req.ScriptText) == "" {
		errResp := relaymodel.NewValidationErrorf("script_text", "must be non-empty")
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}

	gate := planner.NewGate(req.ScriptText)
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"gate":            gate,
		"beats":           gate.Beats,
		"energy_curve":    planner.EnergyCurve(gate.Beats),
		"context_summary": planner.ContextSummary(gate.Beats),
	})
}

// PlannerGate handles POST /api/planner/gate. The client holds the gate
// document between calls; this endpoint checks it against the current script
// and, once open, renders the planner context to embed in a video_plan request.
func PlannerGate(c *gin.Context) {
	body, err := common.GetRequestBody(c)
	if err != nil {
		errResp := relaymodel.NewInvalidBodyError()
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}
	var req struct {
		ScriptText string        `json:"script_text"`
		Gate       *planner.Gate `json:"gate"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Gate == nil {
		errResp := relaymodel.NewInvalidBodyError()
		c.JSON(errResp.StatusCode, failureResult(errResp))
		return
	}

	canSubmit := req.Gate.CanSubmit(req.ScriptText)
	response := gin.H{
		"success":    true,
		"can_submit": canSubmit,
	}
	if canSubmit {
		response["planner_context"] = planner.ContextSummary(req.Gate.Beats)
	}
	c.JSON(http.StatusOK, response)
}
