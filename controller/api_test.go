package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/middleware"
	"github.com/prismstudio/director-core/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)
	server := gin.New()
	server.Use(middleware.RequestId())
	router.SetRouter(server)
	return server
}

func doJSON(server *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func TestGetStatus(t *testing.T) {
	recorder := doJSON(newTestServer(), http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Version   string   `json:"version"`
			Providers []string `json:"providers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.Data.Version)
	assert.Len(t, response.Data.Providers, 3)
}

func TestListModelsCatalog(t *testing.T) {
	recorder := doJSON(newTestServer(), http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Success bool                `json:"success"`
		Data    map[string][]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	for _, provider := range []string{"gemini", "openai", "anthropic"} {
		assert.NotEmpty(t, response.Data[provider], provider)
	}
}

func TestListModelsUnsupportedProvider(t *testing.T) {
	recorder := doJSON(newTestServer(), http.MethodGet, "/api/models?provider=cohere", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPlannerSegments(t *testing.T) {
	body := `{"script_text": "They set out at dawn. The climb was slow.\n\nA storm broke over the ridge! They ran for the caves. Everything depended on the rope."}`
	recorder := doJSON(newTestServer(), http.MethodPost, "/api/planner/segments", body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Success        bool             `json:"success"`
		Beats          []map[string]any `json:"beats"`
		EnergyCurve    []string         `json:"energy_curve"`
		ContextSummary string           `json:"context_summary"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	require.NotEmpty(t, response.Beats)
	assert.Len(t, response.EnergyCurve, len(response.Beats))
	assert.NotEmpty(t, response.ContextSummary)
}

func TestPlannerSegmentsEmptyScript(t *testing.T) {
	recorder := doJSON(newTestServer(), http.MethodPost, "/api/planner/segments", `{"script_text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPlannerGateLifecycle(t *testing.T) {
	server := newTestServer()
	script := "They set out at dawn. The climb was slow.\n\nA storm broke over the ridge! They ran for the caves. Everything depended on the rope."

	segBody, err := json.Marshal(map[string]any{"script_text": script})
	require.NoError(t, err)
	recorder := doJSON(server, http.MethodPost, "/api/planner/segments", string(segBody))
	require.Equal(t, http.StatusOK, recorder.Code)

	var segResponse struct {
		Gate json.RawMessage `json:"gate"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &segResponse))

	var gate map[string]any
	require.NoError(t, json.Unmarshal(segResponse.Gate, &gate))

	check := func(t *testing.T, script string, gate map[string]any) (bool, string) {
		t.Helper()
		body, err := json.Marshal(map[string]any{"script_text": script, "gate": gate})
		require.NoError(t, err)
		recorder := doJSON(server, http.MethodPost, "/api/planner/gate", string(body))
		require.Equal(t, http.StatusOK, recorder.Code)
		var response struct {
			CanSubmit      bool   `json:"can_submit"`
			PlannerContext string `json:"planner_context"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		return response.CanSubmit, response.PlannerContext
	}

	// Fresh gate: questions unanswered, curve unapproved.
	canSubmit, _ := check(t, script, gate)
	assert.False(t, canSubmit)

	for _, beatRaw := range gate["beats"].([]any) {
		beat := beatRaw.(map[string]any)
		for _, questionRaw := range beat["questions"].([]any) {
			questionRaw.(map[string]any)["answer"] = "warm lantern light"
		}
	}
	gate["curve_approved"] = true

	canSubmit, plannerContext := check(t, script, gate)
	assert.True(t, canSubmit)
	assert.Contains(t, plannerContext, "warm lantern light")

	// Any script edit closes the gate again.
	canSubmit, _ = check(t, script+" New ending.", gate)
	assert.False(t, canSubmit)
}

func TestDirectorRejectsNonJSONContentType(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/director", strings.NewReader("mode=image_prompt"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, recorder.Code)
}

func TestDirectorInvalidBody(t *testing.T) {
	recorder := doJSON(newTestServer(), http.MethodPost, "/api/director", "{not json")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.NotEmpty(t, response.Error)
}

func TestHealth(t *testing.T) {
	recorder := doJSON(newTestServer(), http.MethodGet, "/api/monitor/health", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Success    bool              `json:"success"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	// No database is configured under test.
	assert.Equal(t, "down", response.Components["database"])
	assert.Equal(t, "disabled", response.Components["redis"])
}
