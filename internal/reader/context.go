package reader

import "unicode/utf8"

const contextLines = 3

// ContextLine is one wrapped line of surrounding text. Distance is 1 for
// the line nearest the current token, up to 3; the renderer maps it to
// size/opacity falloff.
type ContextLine struct {
	Text     string
	Distance int
}

// ContextWindow is the multi-line alternate display: lines before the
// current token in reading order, and lines after it.
type ContextWindow struct {
	Before []ContextLine
	After  []ContextLine
}

// ComposeContext builds up to three greedily line-wrapped lines on each
// side of the current token. A line never exceeds maxLineChars unless a
// single token alone is wider than the limit; near the ends of the stream
// fewer lines come back.
func ComposeContext(tokens []string, current, maxLineChars int) ContextWindow {
	var w ContextWindow
	if len(tokens) == 0 || current < 0 || current >= len(tokens) {
		return w
	}

	i := current + 1
	for d := 1; d <= contextLines && i < len(tokens); d++ {
		line := ""
		for i < len(tokens) {
			if !lineFits(line, tokens[i], maxLineChars) {
				break
			}
			line = appendToken(line, tokens[i])
			i++
		}
		w.After = append(w.After, ContextLine{Text: line, Distance: d})
	}

	i = current - 1
	for d := 1; d <= contextLines && i >= 0; d++ {
		line := ""
		for i >= 0 {
			if !lineFits(line, tokens[i], maxLineChars) {
				break
			}
			line = prependToken(line, tokens[i])
			i--
		}
		w.Before = append(w.Before, ContextLine{Text: line, Distance: d})
	}
	// Before lines were collected nearest-first; reverse so the slice reads
	// top to bottom in chronological order.
	for a, b := 0, len(w.Before)-1; a < b; a, b = a+1, b-1 {
		w.Before[a], w.Before[b] = w.Before[b], w.Before[a]
	}
	return w
}

// lineFits reports whether tok (plus a separating space) still fits. An
// empty line always accepts a token, however wide.
func lineFits(line, tok string, maxLineChars int) bool {
	if line == "" {
		return true
	}
	return utf8.RuneCountInString(line)+1+utf8.RuneCountInString(tok) <= maxLineChars
}

func appendToken(line, tok string) string {
	if line == "" {
		return tok
	}
	return line + " " + tok
}

func prependToken(line, tok string) string {
	if line == "" {
		return tok
	}
	return tok + " " + line
}
