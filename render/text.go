package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type tagRule struct {
	re  *regexp.Regexp
	sub string
}

// tagRules maps HTML structure onto plain-text markers. Order matters:
// marker substitution has to run before the unconditional tag strip, or the
// markers are lost with the tags.
var tagRules = []tagRule{
	{regexp.MustCompile(`(?i)<br\s*/?>`), "\n"},
	{regexp.MustCompile(`(?i)<p[^>]*>`), "\n\n"},
	{regexp.MustCompile(`(?i)</p>`), "\n"},
	{regexp.MustCompile(`(?i)<div[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</div>`), "\n"},
	{regexp.MustCompile(`(?i)<h[1-6][^>]*>`), "\n\n"},
	{regexp.MustCompile(`(?i)</h[1-6]>`), "\n"},
	{regexp.MustCompile(`(?i)<li[^>]*>`), "\n• "},
	{regexp.MustCompile(`(?i)</li>`), ""},
	{regexp.MustCompile(`(?i)<ul[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</ul>`), "\n"},
	{regexp.MustCompile(`(?i)<ol[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</ol>`), "\n"},
	{regexp.MustCompile(`(?i)<strong[^>]*>`), "**"},
	{regexp.MustCompile(`(?i)</strong>`), "**"},
	{regexp.MustCompile(`(?i)<b[^>]*>`), "**"},
	{regexp.MustCompile(`(?i)</b>`), "**"},
	{regexp.MustCompile(`(?i)<em[^>]*>`), "*"},
	{regexp.MustCompile(`(?i)</em>`), "*"},
	{regexp.MustCompile(`(?i)<i[^>]*>`), "*"},
	{regexp.MustCompile(`(?i)</i>`), "*"},
	{regexp.MustCompile(`(?i)<u[^>]*>`), "_"},
	{regexp.MustCompile(`(?i)</u>`), "_"},
	{regexp.MustCompile(`(?i)<a[^>]*href="([^"]*)"[^>]*>`), "[$1]"},
	{regexp.MustCompile(`(?i)</a>`), ""},
	{regexp.MustCompile(`(?i)<blockquote[^>]*>`), "\n> "},
	{regexp.MustCompile(`(?i)</blockquote>`), "\n"},
	{regexp.MustCompile(`(?i)<hr[^>]*>`), "\n" + strings.Repeat("-", 40) + "\n"},
	{regexp.MustCompile(`(?i)<table[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</table>`), "\n"},
	{regexp.MustCompile(`(?i)<tr[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</tr>`), "\n"},
	{regexp.MustCompile(`(?i)<td[^>]*>`), " | "},
	{regexp.MustCompile(`(?i)</td>`), ""},
	{regexp.MustCompile(`(?i)<th[^>]*>`), " | "},
	{regexp.MustCompile(`(?i)</th>`), ""},
}

var (
	residualTag  = regexp.MustCompile(`<[^>]+>`)
	blankLineRun = regexp.MustCompile(`\n\s*\n\s*\n`)
	spaceRun     = regexp.MustCompile(` +`)
	tabRun       = regexp.MustCompile(`\t+`)
)

// ToText converts HTML body content into a readable plain-text rendering,
// approximating how an email client would display it.
func ToText(htmlBody string) string {
	content := html.UnescapeString(stripElements(htmlBody, "script, style"))
	for _, rule := range tagRules {
		content = rule.re.ReplaceAllString(content, rule.sub)
	}
	content = residualTag.ReplaceAllString(content, "")
	return normalizeWhitespace(content)
}

// stripElements removes the selected elements, subtrees included, and
// returns the remaining markup. On a parse failure the input passes
// through untouched; the regex pass downstream still strips its tags.
func stripElements(htmlBody, selector string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return htmlBody
	}
	doc.Find(selector).Remove()
	out, err := doc.Html()
	if err != nil {
		return htmlBody
	}
	return out
}

func normalizeWhitespace(text string) string {
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = spaceRun.ReplaceAllString(text, " ")
	text = tabRun.ReplaceAllString(text, "    ")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
