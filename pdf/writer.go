package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// Writer turns styled HTML documents or plain text into PDF files on disk.
// The browser path is preferred; every internal failure degrades to the
// text layout instead of propagating.
type Writer struct {
	session Session // nil forces the text fallback for every file
	logger  *slog.Logger
}

func NewWriter(session Session, logger *slog.Logger) *Writer {
	return &Writer{session: session, logger: logger}
}

// HasSession reports whether the browser rendering path is available.
func (w *Writer) HasSession() bool {
	return w.session != nil
}

// Write produces a PDF at path. When doc is non-empty and a browser session
// is available the HTML path is tried first; degraded reports that the text
// fallback produced the file instead. Only a write failure that survives
// even the placeholder document is returned.
func (w *Writer) Write(ctx context.Context, doc, text, path string) (degraded bool, err error) {
	if w.session != nil && doc != "" {
		data, renderErr := w.session.Render(ctx, doc)
		if renderErr == nil {
			renderErr = os.WriteFile(path, data, 0o644)
			if renderErr == nil {
				return false, nil
			}
		}
		if w.logger != nil {
			w.logger.Warn("html rendering failed, using text fallback", "path", path, "err", renderErr)
		}
	}

	return true, w.writeTextPDF(text, path)
}

// writeTextPDF lays plain text out on an A4 page sequence. Sanitized text
// is tried first, then a blind ASCII re-encoding, then a one-line
// placeholder stating that PDF creation failed.
func (w *Writer) writeTextPDF(text, path string) error {
	if err := renderTextPDF(sanitizeASCII(text), path); err == nil {
		return nil
	}
	if err := renderTextPDF(forceASCII(text), path); err == nil {
		return nil
	}
	if err := renderTextPDF("PDF creation failed due to encoding issues.", path); err != nil {
		return fmt.Errorf("write fallback pdf: %w", err)
	}
	return nil
}

func renderTextPDF(text, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, text, "", "L", false)
	return pdf.OutputFileAndClose(path)
}
