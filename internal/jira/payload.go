package jira

import (
	"strings"
	"time"
)

// commentBody renders a comment as an Atlassian Document Format payload.
// Returns nil for blank comments so the field is omitted entirely.
func commentBody(comment string) map[string]any {
	if strings.TrimSpace(comment) == "" {
		return nil
	}

	var content []map[string]any
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		if line != "" {
			content = append(content, map[string]any{"type": "text", "text": line})
		}
		if i != len(lines)-1 {
			content = append(content, map[string]any{"type": "hardBreak"})
		}
	}
	if len(content) == 0 {
		content = append(content, map[string]any{"type": "text", "text": ""})
	}

	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []map[string]any{
			{"type": "paragraph", "content": content},
		},
	}
}

// timestamp renders t the way Jira's API expects started values: ISO-8601
// with second precision and a zone offset. Zero times default to now in the
// local zone.
func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}
