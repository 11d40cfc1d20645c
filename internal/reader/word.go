package reader

import (
	"regexp"
	"unicode/utf8"
)

// Word is a display token split into its punctuation shell and letter core.
// Leading + Core + Trailing always reconstructs the original token.
type Word struct {
	Leading  string
	Core     string
	Trailing string
}

// Frame holds the three display-ready fragments of a word, split around the
// ORP pivot character.
type Frame struct {
	Left   string
	Center string
	Right  string
}

// The core starts at the first letter or digit (an apostrophe directly
// before it belongs to the core, as in 'Tis) and runs through letters,
// digits, apostrophes and hyphens. Everything before is Leading, everything
// after is Trailing.
var wordRe = regexp.MustCompile(`^([^\p{L}\p{N}]*?)(['’]?[\p{L}\p{N}][\p{L}\p{N}'’-]*)(.*)$`)

// SplitWord decomposes a token. A token without any letter or digit is
// treated as all core.
func SplitWord(token string) Word {
	m := wordRe.FindStringSubmatch(token)
	if m == nil {
		return Word{Core: token}
	}
	return Word{Leading: m[1], Core: m[2], Trailing: m[3]}
}

// ORPIndex returns the Optimal Recognition Point for a core of the given
// rune length: the character the eye should land on. Weighted toward the
// start of the word, which is where recognition happens fastest.
func ORPIndex(coreLen int) int {
	switch {
	case coreLen <= 1:
		return 0
	case coreLen <= 5:
		return 1
	case coreLen <= 9:
		return 2
	case coreLen <= 13:
		return 3
	default:
		return 4
	}
}

// ORP returns the pivot index into the word's core, clamped to its length.
func (w Word) ORP() int {
	n := utf8.RuneCountInString(w.Core)
	orp := ORPIndex(n)
	if n > 0 && orp >= n {
		orp = n - 1
	}
	return orp
}

// Frame splits the word into left/center/right fragments around the ORP.
// Center is empty only for an empty core.
func (w Word) Frame() Frame {
	core := []rune(w.Core)
	orp := w.ORP()
	if len(core) == 0 {
		return Frame{Left: w.Leading, Right: w.Trailing}
	}
	return Frame{
		Left:   w.Leading + string(core[:orp]),
		Center: string(core[orp]),
		Right:  string(core[orp+1:]) + w.Trailing,
	}
}
