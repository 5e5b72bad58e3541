package chat

import (
	"strings"

	"github.com/maitred-ai/maitred/internal/domain"
)

// BuildTranscript renders stored history plus the new question as the prompt
// for the assistant. Each stored message becomes a "<Label>: <content>" line,
// the question follows as a final User line, and a bare "Assistant:" line
// marks where the reply is expected. Empty history produces no leading
// artifact.
func BuildTranscript(history []domain.Message, question string) string {
	lines := make([]string, 0, len(history)+2)
	for _, m := range history {
		lines = append(lines, m.Role.Label()+": "+m.Content)
	}
	lines = append(lines, "User: "+question)
	lines = append(lines, "Assistant:")
	return strings.Join(lines, "\n")
}

// titleSnippet derives a session title from the first question: trimmed and
// cut to at most max runes.
func titleSnippet(question string, max int) string {
	trimmed := strings.TrimSpace(question)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return string(runes[:max])
}
