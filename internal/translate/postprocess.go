package translate

import (
	"regexp"
	"strings"
)

// Chat models occasionally stutter on short function words. The pair rule
// covers the common English cases; other target languages still get the
// whitespace and sentence-end cleanup.
var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	doubledPair   = regexp.MustCompile(`(?i)\b(the|a|an|is|that|of|and|or|to|in|for|with|by|from|at|on)\s+(the|a|an|is|that|of|and|or|to|in|for|with|by|from|at|on)\b`)
	sentenceEnd   = regexp.MustCompile(`(\w+)\s+(\w+)\s*([.!?])`)
	wrapQuotes    = regexp.MustCompile(`^["'«»\x60]+|["'«»\x60]+$`)
)

// Postprocess cleans a raw model translation: collapses whitespace, strips
// wrapping quotes, and removes immediately duplicated function words and
// duplicated sentence-final words.
func Postprocess(text string) string {
	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return ""
	}
	text = wrapQuotes.ReplaceAllString(text, "")

	text = doubledPair.ReplaceAllStringFunc(text, func(m string) string {
		fields := strings.Fields(m)
		if len(fields) == 2 && strings.EqualFold(fields[0], fields[1]) {
			return fields[0]
		}
		return m
	})

	text = sentenceEnd.ReplaceAllStringFunc(text, func(m string) string {
		sub := sentenceEnd.FindStringSubmatch(m)
		if strings.EqualFold(sub[1], sub[2]) {
			return sub[1] + sub[3]
		}
		return m
	})

	return strings.TrimSpace(text)
}
