package planner

import "strings"

// Gate holds the client-side submission state for one script. Single-writer:
// the caller owns sequencing, the gate does no locking of its own.
type Gate struct {
	// ScriptText is the exact text the beats were derived from.
	ScriptText    string `json:"script_text"`
	Beats         []Beat `json:"beats"`
	CurveApproved bool   `json:"curve_approved"`
}

// NewGate segments the script and returns a closed gate for it.
func NewGate(script string) *Gate {
	return &Gate{
		ScriptText: script,
		Beats:      SegmentScript(script),
	}
}

// Answer records an answer for a question id. Returns false when the id is
// unknown.
func (g *Gate) Answer(questionId string, answer string) bool {
	for bi := range g.Beats {
		for qi := range g.Beats[bi].Questions {
			if g.Beats[bi].Questions[qi].Id == questionId {
				g.Beats[bi].Questions[qi].Answer = answer
				return true
			}
		}
	}
	return false
}

// ApproveCurve marks the energy curve as human-approved.
func (g *Gate) ApproveCurve() {
	g.CurveApproved = true
}

// CanSubmit reports whether a video plan may be requested: the script must be
// byte-identical to the segmented text, every question answered, and the
// energy curve approved.
func (g *Gate) CanSubmit(script string) bool {
	if g == nil || len(g.Beats) == 0 {
		return false
	}
	if script != g.ScriptText {
		return false
	}
	if !g.CurveApproved {
		return false
	}
	for _, beat := range g.Beats {
		for _, q := range beat.Questions {
			if strings.TrimSpace(q.Answer) == "" {
				return false
			}
		}
	}
	return true
}

// Invalidate discards planner state after a script change. The caller must
// re-segment before submitting.
func (g *Gate) Invalidate() {
	g.Beats = nil
	g.CurveApproved = false
	g.ScriptText = ""
}
