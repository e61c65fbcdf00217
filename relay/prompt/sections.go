package prompt

import (
	"sort"
	"strings"
)

// Section headers the gateway understands in a plain-text model reply.
const (
	SectionSummary        = "Summary"
	SectionMoodMemory     = "Mood Memory"
	SectionPositivePrompt = "Positive Prompt"
	SectionNegativePrompt = "Negative Prompt"
	SectionSettings       = "Settings"
)

var knownSections = []string{
	SectionSummary,
	SectionMoodMemory,
	SectionPositivePrompt,
	SectionNegativePrompt,
	SectionSettings,
}

func isSectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	// Models like to bold headers.
	trimmed = strings.Trim(trimmed, "*#")
	for _, name := range knownSections {
		if len(trimmed) >= len(name)+1 && strings.EqualFold(trimmed[:len(name)], name) {
			rest := strings.TrimSpace(trimmed[len(name):])
			if strings.HasPrefix(rest, ":") {
				return name, true
			}
		}
	}
	return "", false
}

// ExtractSection pulls the body of one labeled section ("Summary:", ...) out
// of a plain-text reply. Collection starts after the header line (any text on
// the header line itself is included) and stops at the next known header.
// Returns "" when the section is absent.
func ExtractSection(text string, name string) string {
	lines := strings.Split(text, "\n")
	var collected []string
	inSection := false
	for _, line := range lines {
		header, ok := isSectionHeader(line)
		if ok {
			if inSection {
				break
			}
			if strings.EqualFold(header, name) {
				inSection = true
				trimmed := strings.Trim(strings.TrimSpace(line), "*#")
				rest := strings.TrimSpace(trimmed[len(header):])
				rest = strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(rest, ":"), "*"))
				if rest != "" {
					collected = append(collected, rest)
				}
			}
			continue
		}
		if inSection {
			collected = append(collected, line)
		}
	}
	return strings.TrimSpace(strings.Join(collected, "\n"))
}

// ParseSettings turns a "Settings:" block into a key/value map. Lines without
// a colon and blank lines are skipped; the first colon splits key from value.
func ParseSettings(block string) map[string]string {
	settings := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		settings[key] = value
	}
	return settings
}

// RenderSettingsBlock is the inverse of ParseSettings, with sorted keys so the
// output is deterministic.
func RenderSettingsBlock(settings map[string]string) string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(settings[k])
		b.WriteString("\n")
	}
	return b.String()
}

// StripCodeFence removes a wrapping ``` fence (with optional language tag)
// from a model reply, if present.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line.
		if firstLine := strings.TrimSpace(trimmed[:idx]); len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
