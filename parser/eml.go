package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/dhcgn/eml-to-pdf/model"
)

// parseEML reads an RFC 5322 message. The part walk is first-wins: the
// first text/plain part becomes BodyText, the first text/html part becomes
// BodyHTML. Decode failures on a single part skip that part only.
func parseEML(path string) (*model.NormalizedMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open eml: %w", err)
	}
	defer file.Close()

	mr, err := mail.CreateReader(file)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("parse eml: %w", err)
	}

	msg := &model.NormalizedMessage{
		Subject:   model.DefaultSubject,
		Sender:    model.DefaultSender,
		Recipient: model.DefaultRecipient,
		DateRaw:   model.DefaultDate,
	}

	header := mr.Header
	if subject, err := header.Subject(); err == nil && strings.TrimSpace(subject) != "" {
		msg.Subject = subject
	} else if raw := header.Get("Subject"); strings.TrimSpace(raw) != "" {
		msg.Subject = raw
	}
	if from := header.Get("From"); strings.TrimSpace(from) != "" {
		msg.Sender = from
	}
	if to := header.Get("To"); strings.TrimSpace(to) != "" {
		msg.Recipient = to
	}
	if dateRaw := header.Get("Date"); strings.TrimSpace(dateRaw) != "" {
		msg.DateRaw = dateRaw
		// Unparseable dates leave msg.Date zero; the runner records the
		// file as failed instead of the parser erroring out.
		if date, err := header.Date(); err == nil {
			msg.Date = date
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			switch {
			case strings.HasPrefix(contentType, "text/plain") && msg.BodyText == "":
				if body, err := io.ReadAll(part.Body); err == nil {
					msg.BodyText = string(body)
				}
			case strings.HasPrefix(contentType, "text/html") && msg.BodyHTML == "":
				if body, err := io.ReadAll(part.Body); err == nil {
					msg.BodyHTML = string(body)
				}
			}
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			size, _ := io.Copy(io.Discard, part.Body)
			msg.Attachments = append(msg.Attachments, model.Attachment{
				Filename:    filename,
				ContentType: contentType,
				Size:        size,
			})
		}
	}

	return msg, nil
}
