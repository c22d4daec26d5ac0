package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhcgn/eml-to-pdf/model"
)

const multipartEML = "From: sender@example.com\r\n" +
	"To: recipient@example.com\r\n" +
	"Subject: Test Email\r\n" +
	"Date: Mon, 15 Jan 2024 10:30:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
	"\r\n" +
	"Hello plain text.\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=\"utf-8\"\r\n" +
	"\r\n" +
	"<html><body><p>Hello <b>HTML</b></p></body></html>\r\n" +
	"--b1--\r\n"

func writeEML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestParseEMLMultipart(t *testing.T) {
	msg, err := ParseFile(writeEML(t, "test.eml", multipartEML))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if msg.Subject != "Test Email" {
		t.Errorf("Subject = %q, want %q", msg.Subject, "Test Email")
	}
	if msg.Sender != "sender@example.com" {
		t.Errorf("Sender = %q", msg.Sender)
	}
	if msg.Recipient != "recipient@example.com" {
		t.Errorf("Recipient = %q", msg.Recipient)
	}
	if !msg.HasDate() {
		t.Fatal("expected a parsed date")
	}
	if y, m, d := msg.Date.Date(); y != 2024 || int(m) != 1 || d != 15 {
		t.Errorf("Date = %v, want 2024-01-15", msg.Date)
	}
	if !strings.Contains(msg.BodyText, "Hello plain text.") {
		t.Errorf("BodyText = %q", msg.BodyText)
	}
	if !strings.Contains(msg.BodyHTML, "<b>HTML</b>") {
		t.Errorf("BodyHTML = %q", msg.BodyHTML)
	}
}

func TestParseEMLDefaults(t *testing.T) {
	eml := "MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body only\r\n"

	msg, err := ParseFile(writeEML(t, "bare.eml", eml))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if msg.Subject != model.DefaultSubject {
		t.Errorf("Subject = %q, want %q", msg.Subject, model.DefaultSubject)
	}
	if msg.Sender != model.DefaultSender {
		t.Errorf("Sender = %q, want %q", msg.Sender, model.DefaultSender)
	}
	if msg.Recipient != model.DefaultRecipient {
		t.Errorf("Recipient = %q, want %q", msg.Recipient, model.DefaultRecipient)
	}
	if msg.DateRaw != model.DefaultDate {
		t.Errorf("DateRaw = %q, want %q", msg.DateRaw, model.DefaultDate)
	}
	if msg.HasDate() {
		t.Error("expected no parsed date")
	}
	if !strings.Contains(msg.BodyText, "body only") {
		t.Errorf("BodyText = %q", msg.BodyText)
	}
}

func TestParseEMLMalformedDate(t *testing.T) {
	eml := "Subject: Bad Date\r\n" +
		"Date: not a date at all\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"hi\r\n"

	msg, err := ParseFile(writeEML(t, "baddate.eml", eml))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	// A malformed date keeps the raw header but yields no parsed date;
	// the runner records the file as failed, not the parser.
	if msg.DateRaw != "not a date at all" {
		t.Errorf("DateRaw = %q", msg.DateRaw)
	}
	if msg.HasDate() {
		t.Error("expected no parsed date for malformed header")
	}
}

func TestParseEMLFirstPartWins(t *testing.T) {
	eml := "Subject: Two Texts\r\n" +
		"Date: Mon, 15 Jan 2024 10:30:00 +0000\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"b2\"\r\n" +
		"\r\n" +
		"--b2\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"first\r\n" +
		"--b2\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"second\r\n" +
		"--b2--\r\n"

	msg, err := ParseFile(writeEML(t, "two.eml", eml))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if !strings.Contains(msg.BodyText, "first") || strings.Contains(msg.BodyText, "second") {
		t.Errorf("BodyText = %q, want first part only", msg.BodyText)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"mail.eml", FormatEML, true},
		{"MAIL.EML", FormatEML, true},
		{"note.msg", FormatMSG, true},
		{"archive.mbox", "", false},
		{"readme.txt", "", false},
	}

	for _, tt := range tests {
		format, ok := DetectFormat(tt.path)
		if format != tt.format || ok != tt.ok {
			t.Errorf("DetectFormat(%q) = %v, %v; want %v, %v", tt.path, format, ok, tt.format, tt.ok)
		}
	}
}

func TestParseFileUnsupported(t *testing.T) {
	if _, err := ParseFile("notes.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
