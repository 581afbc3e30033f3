package render

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// blockHTMLRe detects body text that already arrives as block-level HTML.
// Running such text through the markdown parser would double-wrap
// paragraphs, so it is only sanitized.
var blockHTMLRe = regexp.MustCompile(`(?i)<\s*(p|div|ul|ol|li|h[1-6]|pre|blockquote|br)\b`)

var (
	doubleBreakRe = regexp.MustCompile(`(?i)(<br\s*/?>\s*){2,}`)
	emptyParaRe   = regexp.MustCompile(`(?i)<p>\s*(?:<br\s*/?>\s*)*</p>`)
)

// sanitizer is the shared UGC policy applied to every rendered body.
var sanitizer = bluemonday.UGCPolicy()

// Markdown converts untrusted markdown body text into sanitized HTML.
// Badge and title text does not go through here; those are escaped at
// template level.
func Markdown(input string) template.HTML {
	text := strings.TrimSpace(input)
	if text == "" {
		return ""
	}

	if blockHTMLRe.MatchString(text) {
		cleaned := doubleBreakRe.ReplaceAllString(text, "<br>")
		cleaned = emptyParaRe.ReplaceAllString(cleaned, "")
		return template.HTML(sanitizer.Sanitize(cleaned))
	}

	// Parser instances are stateful and cannot be reused across calls.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	out := markdown.ToHTML([]byte(normalizeLines(text)), p, renderer)

	cleaned := emptyParaRe.ReplaceAllString(string(out), "")
	cleaned = doubleBreakRe.ReplaceAllString(cleaned, "<br>")
	return template.HTML(sanitizer.Sanitize(cleaned))
}

var (
	crlfRe       = regexp.MustCompile(`\r\n?`)
	trailWSRe    = regexp.MustCompile(`[ \t]+\n`)
	multiBreakRe = regexp.MustCompile(`\n{3,}`)
)

func normalizeLines(s string) string {
	s = crlfRe.ReplaceAllString(s, "\n")
	s = trailWSRe.ReplaceAllString(s, "\n")
	s = multiBreakRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
