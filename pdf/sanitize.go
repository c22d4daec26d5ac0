package pdf

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// punctuation maps common typographic characters onto their closest ASCII
// equivalent for the fixed-font fallback PDF.
var punctuation = map[rune]string{
	'—': "-",   // em dash
	'–': "-",   // en dash
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'…': "...", // ellipsis
}

// sanitizeASCII rewrites text so the core-font fallback renderer can lay it
// out: typographic punctuation is mapped, zero-width characters dropped,
// everything else is decomposed to ASCII where possible and replaced with
// '?' where not.
func sanitizeASCII(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	for _, r := range text {
		if r < 0x80 {
			sb.WriteRune(r)
			continue
		}
		if sub, ok := punctuation[r]; ok {
			sb.WriteString(sub)
			continue
		}
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			continue
		}

		wrote := false
		for _, d := range norm.NFKD.String(string(r)) {
			if d < 0x80 {
				sb.WriteRune(d)
				wrote = true
			}
		}
		if !wrote {
			sb.WriteByte('?')
		}
	}

	return sb.String()
}

// forceASCII is the blind re-encoding used when sanitized text still cannot
// be laid out: every non-ASCII rune becomes a placeholder.
func forceASCII(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r < 0x80 {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('?')
		}
	}
	return sb.String()
}
