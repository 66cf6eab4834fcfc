package caption

import "strings"

const fallbackMaxRunes = 120

// Fallback derives a caption locally when the external service fails or
// times out. Deterministic and never empty for a non-empty title or
// description.
func Fallback(title, description string) string {
	src := strings.TrimSpace(description)
	if src == "" {
		src = strings.TrimSpace(title)
	}
	runes := []rune(src)
	if len(runes) <= fallbackMaxRunes {
		return src
	}
	return strings.TrimSpace(string(runes[:fallbackMaxRunes])) + "…"
}
