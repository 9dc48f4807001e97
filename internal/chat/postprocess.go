// Package chat runs the end-to-end chat pipeline: scope gating, context
// building, enrichment, prompt construction, model invocation, response
// post-processing, and caching.
package chat

import "strings"

// RefusalResponse is returned for messages outside the onboarding domain.
const RefusalResponse = "I'm here to help with onboarding only — tasks, documents, training, and team intros. For other topics, please reach out to your manager or HR."

// filler phrases dropped from model output. Matching is case-insensitive
// substring per line.
var fillerPhrases = []string{"regarding", "please feel free", "hope this helps", "let me know"}

const maxResponseLines = 4

// Trim strips pleasantry lines from a model completion and caps the
// result at four lines.
func Trim(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		lower := strings.ToLower(line)
		if containsAny(lower, fillerPhrases) {
			continue
		}
		if strings.HasPrefix(lower, "dear") || strings.Contains(lower, "thank you") {
			continue
		}
		filtered = append(filtered, strings.TrimSpace(line))
	}
	if len(filtered) > maxResponseLines {
		filtered = filtered[:maxResponseLines]
	}
	return strings.Join(filtered, "\n")
}

// IsValid reports whether a response is worth caching. Error sentinels
// and sub-20-character fragments are not.
func IsValid(text string) bool {
	if text == "" {
		return false
	}
	if strings.Contains(text, "SUPA Chat is taking longer") ||
		strings.Contains(text, "encountered an error") {
		return false
	}
	return len(strings.TrimSpace(text)) > 20
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
