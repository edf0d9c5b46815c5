package tradoc

import (
	"fmt"
	"strings"
)

// trailer is one structured Key: Value line at the end of a commit
// message.
type trailer struct {
	key   string
	value string
}

// CommitMessage builds the commit messages recorded for task mutations:
// a one-line summary, a blank line, human-readable body lines, a blank
// line, then ordered trailer lines. Git-log tooling parses the trailers,
// so their format and order are load-bearing.
type CommitMessage struct {
	summary  string
	body     []string
	trailers []trailer
}

// NewCommitMessage starts a message with the given summary line.
func NewCommitMessage(format string, args ...any) *CommitMessage {
	return &CommitMessage{summary: fmt.Sprintf(format, args...)}
}

// Line appends one body line.
func (m *CommitMessage) Line(format string, args ...any) *CommitMessage {
	m.body = append(m.body, fmt.Sprintf(format, args...))
	return m
}

// Trailer appends one trailer line. Trailers render in the order they
// were added.
func (m *CommitMessage) Trailer(key, value string) *CommitMessage {
	m.trailers = append(m.trailers, trailer{key: key, value: value})
	return m
}

// Summary returns the first line of the message.
func (m *CommitMessage) Summary() string {
	return m.summary
}

// String renders the full commit message.
func (m *CommitMessage) String() string {
	var b strings.Builder
	b.WriteString(m.summary)

	if len(m.body) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(m.body, "\n"))
	}

	if len(m.trailers) > 0 {
		b.WriteString("\n\n")
		for i, t := range m.trailers {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(t.key)
			b.WriteString(": ")
			b.WriteString(t.value)
		}
	}

	return b.String()
}
