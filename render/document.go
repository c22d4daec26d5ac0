package render

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// documentTemplate is the self-contained page the browser renders to PDF.
// All styling is inline so the result has no external dependencies.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{subject}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f9f9f9;
        }
        .email-header {
            background-color: #ffffff;
            padding: 20px;
            margin-bottom: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .email-header h1 {
            color: #2c3e50;
            margin: 0 0 10px 0;
            font-size: 18px;
        }
        .email-header p {
            margin: 5px 0;
            color: #666;
            font-size: 14px;
        }
        .email-content {
            background-color: #ffffff;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .email-content img {
            max-width: 100%;
            height: auto;
            border-radius: 4px;
        }
        .email-content a {
            color: #3498db;
            text-decoration: none;
        }
        .email-content h1, .email-content h2, .email-content h3 {
            color: #2c3e50;
        }
        .email-content ul, .email-content ol {
            padding-left: 20px;
        }
        .email-content blockquote {
            border-left: 4px solid #3498db;
            margin: 10px 0;
            padding-left: 15px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="email-header">
        <h1>{{subject}}</h1>
        <p><strong>From:</strong> {{sender}}</p>
        <p><strong>To:</strong> {{recipient}}</p>
        <p><strong>Date:</strong> {{date}}</p>
    </div>
    <div class="email-content">
        {{body}}
    </div>
</body>
</html>
`

// StyledDocument embeds the cleaned HTML body of a message in a complete
// document with a header block and inline styling, ready for PDF rendering.
func StyledDocument(htmlBody, subject, sender, recipient, date string) string {
	return strings.NewReplacer(
		"{{subject}}", html.EscapeString(subject),
		"{{sender}}", html.EscapeString(sender),
		"{{recipient}}", html.EscapeString(recipient),
		"{{date}}", html.EscapeString(date),
		"{{body}}", cleanBody(htmlBody),
	).Replace(documentTemplate)
}

// cleanBody drops script, style, meta and link elements and returns the
// body markup verbatim otherwise.
func cleanBody(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return htmlBody
	}
	doc.Find("script, style, meta, link").Remove()
	out, err := doc.Find("body").Html()
	if err != nil {
		return htmlBody
	}
	return out
}
