package planner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/prismstudio/director-core/common/helper"
)

const (
	// MaxBeats bounds every segmentation result.
	MaxBeats = 10
	// minParagraphs below which the script is re-split by sentence.
	minParagraphs = 4
	// sentenceBuckets caps the regrouped bucket count.
	sentenceBuckets = 8

	titleMaxLen = 64
)

// Energy classifications.
const (
	EnergyGrounded = "grounded"
	EnergyRising   = "rising"
	EnergySurge    = "surge"
)

var momentumKeywords = []string{
	"surge", "climax", "urgent", "explode", "burst",
	"rush", "chase", "collapse", "ignite", "showdown",
}

// Question is one clarifying question attached to a beat. Answers are the
// only mutable part of planner state.
type Question struct {
	Id     string `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Beat is one ordered narrative unit derived from a script.
type Beat struct {
	Order       int        `json:"order"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Energy      string     `json:"energy"`
	EnergyScore float64    `json:"energy_score"`
	Questions   []Question `json:"questions"`
}

var sentenceEnd = regexp.MustCompile(`([.!?]+)(\s+|$)`)

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[last:loc[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

func splitParagraphs(script string) []string {
	var segments []string
	for _, p := range blankLine.Split(script, -1) {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// regroupSentences distributes sentences evenly into at most sentenceBuckets
// buckets, one bucket per sentence when there are fewer.
func regroupSentences(sentences []string) []string {
	buckets := sentenceBuckets
	if len(sentences) < buckets {
		buckets = len(sentences)
	}
	if buckets == 0 {
		return nil
	}
	base := len(sentences) / buckets
	rem := len(sentences) % buckets
	segments := make([]string, 0, buckets)
	idx := 0
	for i := 0; i < buckets; i++ {
		size := base
		if i < rem {
			size++
		}
		segments = append(segments, strings.Join(sentences[idx:idx+size], " "))
		idx += size
	}
	return segments
}

// mergeSmallest repeatedly merges the adjacent pair with the smallest combined
// character length until the count fits MaxBeats. Content is never discarded.
func mergeSmallest(segments []string) []string {
	for len(segments) > MaxBeats {
		best := 0
		bestLen := len(segments[0]) + len(segments[1])
		for i := 1; i < len(segments)-1; i++ {
			if l := len(segments[i]) + len(segments[i+1]); l < bestLen {
				best = i
				bestLen = l
			}
		}
		merged := segments[best] + "\n\n" + segments[best+1]
		segments = append(segments[:best], append([]string{merged}, segments[best+2:]...)...)
	}
	return segments
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func energyScore(segment string, avgWords float64) float64 {
	score := 0.0
	if avgWords > 0 {
		score = float64(wordCount(segment)) / avgWords
	}
	score += 0.1 * float64(strings.Count(segment, "!")+strings.Count(segment, "?"))
	lower := strings.ToLower(segment)
	for _, kw := range momentumKeywords {
		if strings.Contains(lower, kw) {
			score += 0.2
			break
		}
	}
	return score
}

func classifyEnergy(score float64) string {
	switch {
	case score < 0.9:
		return EnergyGrounded
	case score > 1.3:
		return EnergySurge
	default:
		return EnergyRising
	}
}

func deriveTitle(segment string) string {
	sentences := splitSentences(segment)
	title := ""
	if len(sentences) > 0 {
		title = sentences[0]
	}
	words := strings.Fields(title)
	if len(words) == 0 {
		words = strings.Fields(segment)
	}
	if len(words) > 8 {
		words = words[:8]
	}
	return helper.Truncate(strings.Join(words, " "), titleMaxLen)
}

// SegmentScript splits a script into 1..MaxBeats ordered beats with energy
// classifications and clarifying questions. Question ids are fresh per call;
// everything else is deterministic for byte-identical input.
func SegmentScript(script string) []Beat {
	segments := splitParagraphs(script)
	if len(segments) < minParagraphs {
		if sentences := splitSentences(script); len(sentences) > 0 {
			segments = regroupSentences(sentences)
		}
	}
	if len(segments) == 0 {
		return nil
	}
	segments = mergeSmallest(segments)

	totalWords := 0
	for _, s := range segments {
		totalWords += wordCount(s)
	}
	avgWords := float64(totalWords) / float64(len(segments))

	beats := make([]Beat, 0, len(segments))
	for i, segment := range segments {
		score := energyScore(segment, avgWords)
		beat := Beat{
			Order:       i + 1,
			Title:       deriveTitle(segment),
			Excerpt:     segment,
			Energy:      classifyEnergy(score),
			EnergyScore: score,
		}
		beat.Questions = append(beat.Questions, Question{
			Id:     uuid.New().String(),
			Prompt: fmt.Sprintf("What visual motif or palette anchors beat %d (%s)?", beat.Order, beat.Title),
		})
		if i < len(segments)-1 {
			beat.Questions = append(beat.Questions, Question{
				Id:     uuid.New().String(),
				Prompt: fmt.Sprintf("How should beat %d hand off into the next beat?", beat.Order),
			})
		}
		beats = append(beats, beat)
	}
	return beats
}

// EnergyCurve returns the ordered energy classifications across all beats.
func EnergyCurve(beats []Beat) []string {
	curve := make([]string, len(beats))
	for i, b := range beats {
		curve[i] = b.Energy
	}
	return curve
}

// ContextSummary renders the human-reviewable planning context that the
// video-plan instruction embeds once the gate opens.
func ContextSummary(beats []Beat) string {
	var b strings.Builder
	for _, beat := range beats {
		fmt.Fprintf(&b, "Beat %d [%s]: %s\n", beat.Order, beat.Energy, beat.Title)
		for _, q := range beat.Questions {
			if strings.TrimSpace(q.Answer) != "" {
				fmt.Fprintf(&b, "  %s -> %s\n", q.Prompt, strings.TrimSpace(q.Answer))
			}
		}
	}
	return b.String()
}
