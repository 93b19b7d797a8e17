package meaning

import "strings"

func buildExplainPrompt(selection, surrounding string) string {
	builder := strings.Builder{}
	builder.WriteString("You are a patient reading companion. Explain what the highlighted passage means in plain language.\n")
	builder.WriteString("Use ONLY the surrounding text for context; if the meaning is unclear from it, say so.\n")
	builder.WriteString("Keep the explanation under 120 words.\n\n")
	builder.WriteString("Highlighted passage:\n")
	builder.WriteString(strings.TrimSpace(selection))
	if surrounding != "" {
		builder.WriteString("\n\nSurrounding text:\n")
		builder.WriteString(surrounding)
	}
	return builder.String()
}

// clipSurrounding trims an oversized container down to a window centered on
// the selection so the prompt stays within budget.
func clipSurrounding(surrounding, selection string) string {
	surrounding = strings.TrimSpace(surrounding)
	if len(surrounding) <= maxSurroundingChars {
		return surrounding
	}
	window := maxSurroundingChars / 2
	center := strings.Index(surrounding, strings.TrimSpace(selection))
	if center < 0 {
		center = 0
	}
	start := center - window
	if start < 0 {
		start = 0
	}
	end := center + len(selection) + window
	if end > len(surrounding) {
		end = len(surrounding)
	}
	runes := []rune(surrounding[start:end])
	return strings.TrimSpace(string(runes))
}
