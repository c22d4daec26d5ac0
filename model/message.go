package model

import "time"

// Default header values used when a message omits the corresponding field.
const (
	DefaultSubject   = "No Subject"
	DefaultSender    = "Unknown Sender"
	DefaultRecipient = "Unknown Recipient"
	DefaultDate      = "No Date"
)

// Attachment describes a single attachment of a message. Attachments are
// listed for completeness; they are not rendered into the PDF.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
}

// NormalizedMessage is the format-agnostic record produced by parsing an
// .eml or .msg file. Date is the zero time when the message carries no
// usable date header; such messages are recorded as failed and never reach
// the PDF renderer.
type NormalizedMessage struct {
	Subject     string
	Sender      string
	Recipient   string
	DateRaw     string
	Date        time.Time
	BodyText    string
	BodyHTML    string
	Attachments []Attachment
}

// HasDate reports whether the message carries a parseable date.
func (m *NormalizedMessage) HasDate() bool {
	return !m.Date.IsZero()
}

// HasHTML reports whether the message carries an HTML body.
func (m *NormalizedMessage) HasHTML() bool {
	return m.BodyHTML != ""
}

// HeaderText renders the message headers the way the text fallback PDF
// presents them, followed by a separator rule.
func (m *NormalizedMessage) HeaderText() string {
	return "Subject: " + m.Subject + "\n" +
		"From: " + m.Sender + "\n" +
		"To: " + m.Recipient + "\n" +
		"Date: " + m.DateRaw + "\n" +
		"================================================================================\n\n"
}
