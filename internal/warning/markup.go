package warning

import "regexp"

// The masterlist uses a small markdown subset in message and detail texts.
// Only bold and hyperlinks are supported.
var (
	markdownBoldRE      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	markdownHyperlinkRE = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// stripMarkdown removes the markup, keeping only the visible text.
func stripMarkdown(text string) string {
	text = markdownHyperlinkRE.ReplaceAllString(text, "$1")
	return markdownBoldRE.ReplaceAllString(text, "$1")
}

// markdownToHTML converts the markup subset to HTML for full descriptions.
func markdownToHTML(text string) string {
	text = markdownBoldRE.ReplaceAllString(text, "<b>$1</b>")
	return markdownHyperlinkRE.ReplaceAllString(text, `<a href="$2">$1</a>`)
}
