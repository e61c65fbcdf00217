package conversation

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/prismstudio/director-core/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedReply = `Summary: A lone figure in a neon alley, rain catching the light.
Mood Memory: melancholy neon calm`

const revisedReply = `Summary: A lone figure in a warmer, amber-lit alley.
Mood Memory: warm amber hush`

const generateReply = `Positive Prompt: lone figure, neon alley, rain, tight framing
Negative Prompt: crowds, daylight
Settings:
steps: 30
cfg_scale: 7
Summary: Final framing locked on the lone figure.
Mood Memory: melancholy neon calm`

// scriptedCall returns canned replies in sequence.
func scriptedCall(t *testing.T, replies ...string) CallFn {
	i := 0
	return func(ctx context.Context, system string, user string) (string, *model.ErrorWithStatusCode) {
		if i >= len(replies) {
			t.Fatalf("unexpected provider call %d (system: %.40s)", i+1, system)
		}
		reply := replies[i]
		i++
		return reply, nil
	}
}

func seedPayload() *model.ImagePromptPayload {
	return &model.ImagePromptPayload{
		VisionSeedText: "a lone figure in a neon alley",
		Model:          "gemini",
		Controls: map[string][]string{
			"camera_angle": {"low_angle"},
			"lighting":     {"neon_wash"},
		},
		Glossary: map[string][]model.GlossaryEntry{
			"camera_angle": {{Id: "low_angle", Label: "Low angle", Tooltip: "t", PromptSnippet: "dramatic low-angle shot"}},
		},
	}
}

func TestSeedInitializesContext(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)

	assert.Equal(t, model.StageConfirm, c.Stage)
	assert.Equal(t, "A lone figure in a neon alley, rain catching the light.", c.Summary)
	assert.Equal(t, "melancholy neon calm", c.MoodMemory)
	// Glossary snippet wins over the raw option id.
	assert.Equal(t, "dramatic low-angle shot", c.CameraSnippet)
	// No glossary entry: raw id is kept.
	assert.Equal(t, "neon_wash", c.LightingSnippet)
	assert.NotEmpty(t, c.Id)
}

func TestSeedWithoutSummaryFails(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, "no sections at all")}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.NotNil(t, errResp)
	assert.Nil(t, c)
	assert.Equal(t, model.ErrorTypeMalformedResponse, errResp.Type)
	assert.Equal(t, http.StatusBadGateway, errResp.StatusCode)
}

func TestConfirmAdvancesWithoutProviderCall(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)

	// scriptedCall has no replies left: a provider call here would fail the test.
	require.Nil(t, m.Confirm(context.Background(), c, true, ""))
	assert.Equal(t, model.StageRefine, c.Stage)
	assert.True(t, c.Confirmed)
}

func TestConfirmRevisionLoop(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply, revisedReply)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)

	require.Nil(t, m.Confirm(context.Background(), c, false, "make it warmer"))
	assert.Equal(t, model.StageConfirm, c.Stage, "rejection keeps the stage at confirm")
	assert.Equal(t, "A lone figure in a warmer, amber-lit alley.", c.Summary)
	assert.Equal(t, "warm amber hush", c.MoodMemory)
}

func TestConfirmRejectionRequiresFeedback(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)

	errResp = m.Confirm(context.Background(), c, false, "   ")
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeValidation, errResp.Type)
}

func TestFullFlowReachesGenerate(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply, generateReply)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)
	require.Nil(t, m.Confirm(context.Background(), c, true, ""))
	require.Nil(t, m.Refine(context.Background(), c, []string{"tighten framing", "  ", ""}, ""))

	assert.Equal(t, model.StageGenerate, c.Stage)
	assert.NotEmpty(t, c.PositivePrompt)
	assert.NotEmpty(t, c.NegativePrompt)
	require.NotEmpty(t, c.Settings)
	assert.Equal(t, "30", c.Settings["steps"])
	// Whitespace-only refinement commands are discarded.
	assert.Equal(t, []string{"tighten framing"}, c.RefinementCommands)
	// The generate reply refreshes the summary.
	assert.Equal(t, "Final framing locked on the lone figure.", c.Summary)
}

func TestGenerateMissingSectionFailsWithoutAdvancing(t *testing.T) {
	partial := strings.Replace(generateReply, "Negative Prompt: crowds, daylight\n", "", 1)
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply, partial)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)
	require.Nil(t, m.Confirm(context.Background(), c, true, ""))

	errResp = m.Refine(context.Background(), c, []string{"tighten framing"}, "")
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeMalformedResponse, errResp.Type)
	// The stage did not advance and earlier state is intact.
	assert.Equal(t, model.StageRefine, c.Stage)
	assert.Empty(t, c.PositivePrompt)
}

func TestStageOrderEnforced(t *testing.T) {
	m := &Machine{Provider: "gemini", Call: scriptedCall(t, seedReply)}
	c, errResp := m.Seed(context.Background(), seedPayload())
	require.Nil(t, errResp)

	// Refine before confirm is rejected.
	errResp = m.Refine(context.Background(), c, []string{"x"}, "")
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeValidation, errResp.Type)
}
