package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the longest text a chat message may carry, in runes.
const MaxMessageLength = 4096

// dueDateLayout is how due dates appear in notification text.
const dueDateLayout = "2006-01-02 15:04 UTC"

// RenderMessage builds the user-facing reminder text for a due task.
func RenderMessage(t *Task) string {
	var b strings.Builder
	b.WriteString("Reminder: \"")
	b.WriteString(strings.TrimSpace(t.Title))
	b.WriteString("\" is due ")
	b.WriteString(t.DueDate.UTC().Format(dueDateLayout))

	if desc := strings.TrimSpace(t.Description); desc != "" {
		b.WriteString("\n\n")
		b.WriteString(desc)
	}

	return truncateRunes(b.String(), MaxMessageLength)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
