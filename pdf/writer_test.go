package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeSession struct {
	data []byte
	err  error
}

func (f *fakeSession) Render(ctx context.Context, html string) ([]byte, error) {
	return f.data, f.err
}

func (f *fakeSession) Close() error { return nil }

func TestWriteWithoutSessionUsesFallback(t *testing.T) {
	w := NewWriter(nil, nil)
	path := filepath.Join(t.TempDir(), "out.pdf")

	degraded, err := w.Write(context.Background(), "<html></html>", "hello fallback", path)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !degraded {
		t.Error("expected degraded result without a session")
	}
	assertPDF(t, path)
}

func TestWriteSessionSuccess(t *testing.T) {
	w := NewWriter(&fakeSession{data: []byte("%PDF-1.4 fake")}, nil)
	path := filepath.Join(t.TempDir(), "out.pdf")

	degraded, err := w.Write(context.Background(), "<html></html>", "text", path)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if degraded {
		t.Error("expected the browser path, not the fallback")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("output = %q", data)
	}
}

func TestWriteSessionFailureFallsBack(t *testing.T) {
	w := NewWriter(&fakeSession{err: errors.New("render engine down")}, nil)
	path := filepath.Join(t.TempDir(), "out.pdf")

	degraded, err := w.Write(context.Background(), "<html></html>", "degraded content", path)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !degraded {
		t.Error("expected fallback after render failure")
	}
	assertPDF(t, path)
}

func TestWriteNonASCIIText(t *testing.T) {
	w := NewWriter(nil, nil)
	path := filepath.Join(t.TempDir(), "out.pdf")

	text := "typography — “quotes” … and 日本語"
	if _, err := w.Write(context.Background(), "", text, path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	assertPDF(t, path)
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("output does not look like a PDF: %q", data[:min(16, len(data))])
	}
}
