// Package reader provides the core RSVP (Rapid Serial Visual Presentation)
// engine: tokenization, word decomposition, pacing, and session navigation.
package reader

import (
	"sort"
	"time"
)

// ChapterMark names the token index at which a chapter begins.
type ChapterMark struct {
	Title string
	Start int
}

// Session holds all mutable state for one reading session. A new book
// discards the previous session entirely.
type Session struct {
	Tokens         []string
	Chapters       []ChapterMark
	ChapterStarts  []int // sorted, deduplicated, always contains 0
	SentenceStarts []int
	Bookmarks      []int // sorted ascending
	CurrentIndex   int
	WPM            int
	Playing        bool
	LastArrowPress time.Time
}

// NewSession builds a session over an immutable token stream.
func NewSession(tokens []string, chapters []ChapterMark, wpm int) *Session {
	return &Session{
		Tokens:         tokens,
		Chapters:       chapters,
		ChapterStarts:  deriveChapterStarts(chapters),
		SentenceStarts: findSentenceStarts(tokens),
		WPM:            wpm,
	}
}

// deriveChapterStarts collects chapter indices into the sorted, deduplicated
// table the scheduler consults. Index 0 is always a chapter start even when
// the source never marked one.
func deriveChapterStarts(chapters []ChapterMark) []int {
	starts := []int{0}
	for _, ch := range chapters {
		starts = append(starts, ch.Start)
	}
	sort.Ints(starts)
	out := starts[:1]
	for _, s := range starts[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// findSentenceStarts returns indices of tokens that begin sentences, judged
// by the final byte of the previous token. Not linguistic segmentation,
// just enough for prev/next-sentence jumps.
func findSentenceStarts(tokens []string) []int {
	starts := []int{0}
	for i, tok := range tokens {
		if len(tok) > 0 {
			last := tok[len(tok)-1]
			if last == '.' || last == '!' || last == '?' {
				if i+1 < len(tokens) {
					starts = append(starts, i+1)
				}
			}
		}
	}
	return starts
}

// Jump moves the cursor by delta, clamped to the stream bounds. Never
// fails; out-of-range deltas silently stick to the nearest edge.
func (s *Session) Jump(delta int) {
	pos := s.CurrentIndex + delta
	if pos < 0 {
		pos = 0
	}
	if last := len(s.Tokens) - 1; pos > last {
		pos = last
	}
	if pos < 0 {
		pos = 0 // empty stream
	}
	s.CurrentIndex = pos
}

// JumpTo moves the cursor to an absolute index by way of the clamped jump,
// so a stale index (a bookmark recorded against a longer stream, say)
// clamps to the boundary instead of erroring.
func (s *Session) JumpTo(index int) {
	s.Jump(index - s.CurrentIndex)
}

// ToggleBookmark adds or removes a bookmark at the given index. The set
// stays sorted; toggling twice is a no-op pair.
func (s *Session) ToggleBookmark(index int) {
	i := sort.SearchInts(s.Bookmarks, index)
	if i < len(s.Bookmarks) && s.Bookmarks[i] == index {
		s.Bookmarks = append(s.Bookmarks[:i], s.Bookmarks[i+1:]...)
		return
	}
	s.Bookmarks = append(s.Bookmarks, 0)
	copy(s.Bookmarks[i+1:], s.Bookmarks[i:])
	s.Bookmarks[i] = index
}

// IsBookmarked reports whether the index carries a bookmark.
func (s *Session) IsBookmarked(index int) bool {
	i := sort.SearchInts(s.Bookmarks, index)
	return i < len(s.Bookmarks) && s.Bookmarks[i] == index
}

// SetBookmarks replaces the bookmark set with indices clamped into bounds,
// used when restoring persisted state.
func (s *Session) SetBookmarks(indices []int) {
	s.Bookmarks = nil
	for _, idx := range indices {
		if idx < 0 {
			idx = 0
		}
		if last := len(s.Tokens) - 1; last >= 0 && idx > last {
			idx = last
		}
		if len(s.Tokens) > 0 && !s.IsBookmarked(idx) {
			s.ToggleBookmark(idx)
		}
	}
}

// nextChapterStart returns the smallest chapter start strictly greater than
// the current position, or -1 when none remains.
func (s *Session) nextChapterStart() int {
	for _, start := range s.ChapterStarts {
		if start > s.CurrentIndex {
			return start
		}
	}
	return -1
}

// prevChapterStart returns the largest chapter start strictly less than the
// current position, or 0.
func (s *Session) prevChapterStart() int {
	prev := 0
	for _, start := range s.ChapterStarts {
		if start < s.CurrentIndex {
			prev = start
		}
	}
	return prev
}

// Advance moves forward one tick: normally a single token, but when sitting
// on the last token of a chapter (and the book has more than one chapter
// start) it lands directly on the next chapter start, so chapter breaks
// don't linger on a trailing blank beat. Returns false at end of stream,
// leaving the cursor on the last valid token.
func (s *Session) Advance() bool {
	if len(s.ChapterStarts) > 1 {
		if next := s.nextChapterStart(); next > 0 && s.CurrentIndex == next-1 {
			s.CurrentIndex = next
			return true
		}
	}
	if s.CurrentIndex < len(s.Tokens)-1 {
		s.CurrentIndex++
		return true
	}
	return false
}

// Play starts playback. A no-op when already playing, when the rate is
// zero, or when there is nothing to read.
func (s *Session) Play() bool {
	if s.Playing || s.WPM <= 0 || len(s.Tokens) == 0 {
		return false
	}
	s.Playing = true
	return true
}

// Pause stops playback.
func (s *Session) Pause() {
	s.Playing = false
}

// JumpToNextChapter moves to the next chapter start, or the last token when
// already in the final chapter.
func (s *Session) JumpToNextChapter() {
	if next := s.nextChapterStart(); next >= 0 {
		s.CurrentIndex = next
	} else if len(s.Tokens) > 0 {
		s.CurrentIndex = len(s.Tokens) - 1
	}
}

// JumpToPrevChapter moves to the previous chapter start.
func (s *Session) JumpToPrevChapter() {
	s.CurrentIndex = s.prevChapterStart()
}

// JumpToPrevSentence moves to the start of the previous sentence.
func (s *Session) JumpToPrevSentence() {
	for i := len(s.SentenceStarts) - 1; i >= 0; i-- {
		if s.SentenceStarts[i] < s.CurrentIndex {
			s.CurrentIndex = s.SentenceStarts[i]
			return
		}
	}
	s.CurrentIndex = 0
}

// JumpToNextSentence moves to the start of the next sentence.
func (s *Session) JumpToNextSentence() {
	for i := 0; i < len(s.SentenceStarts); i++ {
		if s.SentenceStarts[i] > s.CurrentIndex {
			s.CurrentIndex = s.SentenceStarts[i]
			return
		}
	}
	if len(s.Tokens) > 0 {
		s.CurrentIndex = len(s.Tokens) - 1
	}
}

// NextBookmark moves to the first bookmark after the cursor, wrapping to
// the first bookmark. A no-op without bookmarks.
func (s *Session) NextBookmark() {
	if len(s.Bookmarks) == 0 {
		return
	}
	for _, idx := range s.Bookmarks {
		if idx > s.CurrentIndex {
			s.JumpTo(idx)
			return
		}
	}
	s.JumpTo(s.Bookmarks[0])
}

// CurrentToken returns the token under the cursor, or "" when empty.
func (s *Session) CurrentToken() string {
	if s.CurrentIndex >= 0 && s.CurrentIndex < len(s.Tokens) {
		return s.Tokens[s.CurrentIndex]
	}
	return ""
}

// CurrentChapterTitle returns the title of the chapter containing the
// cursor, or "".
func (s *Session) CurrentChapterTitle() string {
	title := ""
	for _, ch := range s.Chapters {
		if ch.Start <= s.CurrentIndex {
			title = ch.Title
		}
	}
	return title
}

// Progress returns the 1-based position and total token count.
func (s *Session) Progress() (current, total int) {
	return s.CurrentIndex + 1, len(s.Tokens)
}

// AtEnd reports whether the cursor sits on the last token.
func (s *Session) AtEnd() bool {
	return s.CurrentIndex >= len(s.Tokens)-1
}

// MinutesLeft estimates reading time remaining at the current rate. The
// second return is false when the rate is zero and no estimate exists.
func (s *Session) MinutesLeft() (int, bool) {
	if s.WPM <= 0 {
		return 0, false
	}
	return (len(s.Tokens) - s.CurrentIndex) / s.WPM, true
}

// ChapterPercent returns a chapter start as a percentage of the stream.
func (s *Session) ChapterPercent(start int) int {
	if len(s.Tokens) == 0 {
		return 0
	}
	return start * 100 / len(s.Tokens)
}
