package runner

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestExtractFilenamePrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "NoName"},
		{"whitespace only", "   ", "NoName"},
		{"single word", "Invoice", "Invoice"},
		{"two words", "Test Email", "Test_Email"},
		{"three words", "Quarterly Report Draft", "Quarterly_Report_Draft"},
		{"more than three words", "one two three four five", "one_two_three"},
		{"special characters removed", "Re: [Project] Update!", "Re_Project_Update"},
		{"numbers kept", "Q3 2024 numbers", "Q3_2024_numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFilenamePrefix(tt.in); got != tt.want {
				t.Errorf("ExtractFilenamePrefix(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNamerClaim(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	namer := NewNamer(dir)
	if got := namer.Claim(date, "Test_Email"); filepath.Base(got) != "2024-01-15_Email_Test_Email.pdf" {
		t.Errorf("first claim = %q", filepath.Base(got))
	}

	// Same prefix again in the same run: the claimed set forces _1 even
	// though neither file exists on disk yet.
	if got := namer.Claim(date, "Test_Email"); filepath.Base(got) != "2024-01-15_Email_Test_Email_1.pdf" {
		t.Errorf("second claim = %q", filepath.Base(got))
	}
}

func TestNamerClaimExistingFiles(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, name := range []string{
		"2024-01-15_Email_Report.pdf",
		"2024-01-15_Email_Report_1.pdf",
		"2024-01-15_Email_Report_2.pdf",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	namer := NewNamer(dir)
	if got := namer.Claim(date, "Report"); filepath.Base(got) != "2024-01-15_Email_Report_3.pdf" {
		t.Errorf("claim = %q, want _3 suffix", filepath.Base(got))
	}
}

func TestNamerConcurrentClaimsAreDistinct(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	namer := NewNamer(dir)

	const n = 20
	paths := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths <- namer.Claim(date, "Same_Prefix")
		}()
	}
	wg.Wait()
	close(paths)

	seen := make(map[string]bool)
	for p := range paths {
		if seen[p] {
			t.Errorf("path claimed twice: %s", p)
		}
		seen[p] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct paths, got %d", n, len(seen))
	}
}
