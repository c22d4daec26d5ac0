package pdf

import "testing"

func TestSanitizeASCII(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii passthrough", "plain text", "plain text"},
		{"em dash", "a—b", "a-b"},
		{"en dash", "a–b", "a-b"},
		{"curly quotes", "“hi” and ‘there’", `"hi" and 'there'`},
		{"ellipsis", "wait…", "wait..."},
		{"zero width dropped", "a‌b‍b", "abb"},
		{"accents decomposed", "café", "cafe"},
		{"undecomposable replaced", "日本", "??"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeASCII(tt.in); got != tt.want {
				t.Errorf("sanitizeASCII(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestForceASCII(t *testing.T) {
	if got := forceASCII("a—b日"); got != "a?b?" {
		t.Errorf("forceASCII = %q, want %q", got, "a?b?")
	}
}
