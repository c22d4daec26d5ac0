package filter

import "testing"

func TestFilter_Allows_IncludeMode(t *testing.T) {
	f, err := New(Options{IncludeHeader: []string{"Subject: Invoice"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	header := "Subject: Invoice 2024\nFrom: billing@example.com\n"
	body := "Please find the invoice attached"

	if !f.Allows(header, body) {
		t.Error("expected message to be allowed (header matches)")
	}

	if f.Allows("Subject: Other\nFrom: someone@example.com\n", body) {
		t.Error("expected message to be filtered out (header doesn't match)")
	}
}

func TestFilter_Allows_ExcludeMode(t *testing.T) {
	f, err := New(Options{ExcludeBody: []string{"unsubscribe"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("Subject: Hello\n", "regular content") {
		t.Error("expected message to be allowed")
	}

	if f.Allows("Subject: Hello\n", "click here to unsubscribe") {
		t.Error("expected message to be filtered out (body matches exclude)")
	}
}

func TestFilter_MutuallyExclusive(t *testing.T) {
	_, err := New(Options{
		IncludeHeader: []string{"test"},
		ExcludeHeader: []string{"spam"},
	})
	if err == nil {
		t.Error("expected error when both include and exclude are specified")
	}
}

func TestFilter_Inactive(t *testing.T) {
	f, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if f.Active() {
		t.Error("empty filter must be inactive")
	}
	if !f.Allows("any header", "any body") {
		t.Error("inactive filter must allow everything")
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	if _, err := New(Options{IncludeHeader: []string{"(unclosed"}}); err == nil {
		t.Error("expected error for invalid regex")
	}
}
