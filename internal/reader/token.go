package reader

import (
	"regexp"
	"strings"
	"unicode"
)

// Markdown constructs stripped before tokenizing. Each is replaced with a
// single space so words on either side stay separate tokens.
var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]*`")
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	hruleRe      = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	quoteRe      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	listItemRe   = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+`)

	dashRe = regexp.MustCompile(`[\x{2013}\x{2014}]`)
)

// Normalize turns raw text into the ordered token stream used for display.
// Markdown markup is stripped, whitespace runs collapse to single spaces,
// em/en dashes are isolated, and fragments without a single letter or digit
// are dropped. Isolated dashes are the one exception to the drop rule: they
// carry a pause and stay in the stream as their own tokens. The result is
// deterministic and stable: joining the tokens with spaces and normalizing
// again yields the same stream.
func Normalize(text string) []string {
	s := stripMarkup(text)

	// A dash glued to a word on either side still reads as a pause marker,
	// so force it onto its own candidate before splitting.
	s = dashRe.ReplaceAllString(s, " $0 ")

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if hasAlnum(f) || f == "—" || f == "–" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func stripMarkup(text string) string {
	s := fencedCodeRe.ReplaceAllString(text, " ")
	s = inlineCodeRe.ReplaceAllString(s, " ")
	s = imageRe.ReplaceAllString(s, " ")
	s = linkRe.ReplaceAllString(s, " $1 ")
	s = hruleRe.ReplaceAllString(s, " ")
	s = headingRe.ReplaceAllString(s, " ")
	s = quoteRe.ReplaceAllString(s, " ")
	s = listItemRe.ReplaceAllString(s, " ")
	return s
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
