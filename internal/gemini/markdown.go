package gemini

import (
	"regexp"
	"strings"
)

var (
	codeFence     = regexp.MustCompile("```[a-zA-Z0-9+#-]*\\n?([\\s\\S]*?)```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	heading       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldStars     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnders    = regexp.MustCompile(`__([^_]+)__`)
	italicStar    = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUnder   = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	image         = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	link          = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	horizontal    = regexp.MustCompile(`(?m)^[-*]{3,}\s*$`)
	blockquote    = regexp.MustCompile(`(?m)^>\s+`)
	bullet        = regexp.MustCompile(`(?m)^[ \t]*[-*+]\s+`)
	numbered      = regexp.MustCompile(`(?m)^[ \t]*\d+\.\s+`)
	strikethrough = regexp.MustCompile(`~~([^~]+)~~`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// MarkdownToPlainText strips markdown syntax and keeps code block contents
func MarkdownToPlainText(md string) string {
	text := codeFence.ReplaceAllString(md, "$1")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = heading.ReplaceAllString(text, "")
	text = boldStars.ReplaceAllString(text, "$1")
	text = boldUnders.ReplaceAllString(text, "$1")
	text = horizontal.ReplaceAllString(text, "")
	text = bullet.ReplaceAllString(text, "")
	text = italicStar.ReplaceAllString(text, "$1")
	text = italicUnder.ReplaceAllString(text, "$1")
	text = image.ReplaceAllString(text, "$1")
	text = link.ReplaceAllString(text, "$1")
	text = blockquote.ReplaceAllString(text, "")
	text = numbered.ReplaceAllString(text, "")
	text = strikethrough.ReplaceAllString(text, "$1")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
