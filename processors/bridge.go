package processors

import (
	"regexp"
	"strings"

	"videoExplain/core"
)

// bridgeCap bounds the carried-over text so prompts do not grow with the
// number of segments; the trailing end of the narrative is what the next
// segment needs.
const bridgeCap = 400

var (
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
	markerRe      = regexp.MustCompile("[#*_>`-]")
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// SummarizeForBridge condenses accumulated markdown into the short summary
// fed into the next segment's prompt: fenced code blocks and markdown
// markers are stripped, whitespace collapsed, and only the last bridgeCap
// characters are kept behind a language-appropriate label.
func SummarizeForBridge(markdown string, lang core.Lang) string {
	txt := fencedBlockRe.ReplaceAllString(markdown, "")
	txt = markerRe.ReplaceAllString(txt, "")
	txt = strings.TrimSpace(whitespaceRe.ReplaceAllString(txt, " "))
	runes := []rune(txt)
	if len(runes) > bridgeCap {
		runes = runes[len(runes)-bridgeCap:]
	}
	label := "Prev: "
	if lang == core.LangJA {
		label = "前要約: "
	}
	return label + string(runes)
}
