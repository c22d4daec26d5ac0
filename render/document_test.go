package render

import (
	"strings"
	"testing"
)

func TestStyledDocumentContainsMetadata(t *testing.T) {
	doc := StyledDocument(
		"<p>body content</p>",
		"Quarterly Report",
		"alice@example.com",
		"bob@example.com",
		"Mon, 15 Jan 2024 10:30:00 +0000",
	)

	if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
		t.Error("document missing DOCTYPE preamble")
	}
	for _, want := range []string{
		"Quarterly Report",
		"alice@example.com",
		"bob@example.com",
		"Mon, 15 Jan 2024 10:30:00 +0000",
		"<p>body content</p>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestStyledDocumentStripsUnsafeElements(t *testing.T) {
	body := `<script>alert(1)</script><link rel="x"><meta charset="utf-8"><p>keep</p>`
	doc := StyledDocument(body, "S", "F", "T", "D")

	for _, banned := range []string{"<script", "alert(1)", "<link", `<meta charset="utf-8">`} {
		if strings.Contains(doc, banned) {
			t.Errorf("document still contains %q", banned)
		}
	}
	if !strings.Contains(doc, "<p>keep</p>") {
		t.Error("document lost the body content")
	}
}

func TestStyledDocumentEscapesHeaderFields(t *testing.T) {
	doc := StyledDocument("<p>x</p>", `<img src=x>`, "F", "T", "D")
	if strings.Contains(doc, "<img src=x>") {
		t.Error("subject was interpolated without escaping")
	}
}
