package jira

import (
	"testing"
	"time"
)

func TestCommentBodyBlank(t *testing.T) {
	if commentBody("") != nil {
		t.Fatal("empty comment should produce no payload")
	}
	if commentBody("  \n ") != nil {
		t.Fatal("whitespace comment should produce no payload")
	}
}

func TestCommentBodyMultiline(t *testing.T) {
	body := commentBody("first\nsecond")
	if body["type"] != "doc" || body["version"] != 1 {
		t.Fatalf("unexpected envelope: %v", body)
	}
	paragraphs := body["content"].([]map[string]any)
	if len(paragraphs) != 1 {
		t.Fatalf("want a single paragraph, got %d", len(paragraphs))
	}
	content := paragraphs[0]["content"].([]map[string]any)
	// text, hardBreak, text
	if len(content) != 3 {
		t.Fatalf("content len = %d, want 3", len(content))
	}
	if content[0]["text"] != "first" || content[1]["type"] != "hardBreak" || content[2]["text"] != "second" {
		t.Fatalf("unexpected content: %v", content)
	}
}

func TestCommentBodySkipsEmptyLines(t *testing.T) {
	body := commentBody("first\n\nthird")
	paragraphs := body["content"].([]map[string]any)
	content := paragraphs[0]["content"].([]map[string]any)
	// text, hardBreak, hardBreak, text
	if len(content) != 4 {
		t.Fatalf("content len = %d, want 4", len(content))
	}
}

func TestTimestampFormat(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 45, 123456789, time.FixedZone("EET", 2*3600))
	if got := timestamp(at); got != "2024-03-01T10:30:45+02:00" {
		t.Fatalf("timestamp = %q", got)
	}
	utc := time.Date(2024, 3, 1, 10, 30, 45, 0, time.UTC)
	if got := timestamp(utc); got != "2024-03-01T10:30:45+00:00" {
		t.Fatalf("timestamp = %q", got)
	}
}

func TestTimestampZeroDefaultsToNow(t *testing.T) {
	if got := timestamp(time.Time{}); len(got) < len("2006-01-02T15:04:05") {
		t.Fatalf("timestamp for zero time looks wrong: %q", got)
	}
}
