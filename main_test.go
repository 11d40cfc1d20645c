//go:build !gui

package main

import (
	"strings"
	"testing"

	"github.com/flitreader/flit/internal/reader"
)

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

func TestClampWPM(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{300, 300},
		{50, minWPM},
		{0, minWPM},
		{2000, maxWPM},
		{minWPM, minWPM},
		{maxWPM, maxWPM},
	}
	for _, tt := range tests {
		if got := clampWPM(tt.in); got != tt.want {
			t.Errorf("clampWPM(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAnchorFrame(t *testing.T) {
	// The pivot stays put: left padding shrinks exactly as the left
	// fragment grows, so pad + runes(Left) is constant for a given width.
	width := 40
	for _, tok := range []string{"a", "to", "word", "reading", "extraordinary", `"Hello,"`} {
		frame := reader.SplitWord(tok).Frame()
		line := anchorFrame(frame, width)
		got := leadingSpaces(line) + len([]rune(frame.Left))
		if got != width/2 {
			t.Errorf("anchorFrame(%q): pivot at column %d, want %d", tok, got, width/2)
		}
	}
}

func TestAnchorFrameNarrowWidth(t *testing.T) {
	// Left fragment wider than half the screen: padding clamps at zero.
	frame := reader.SplitWord("extraordinary").Frame()
	line := anchorFrame(frame, 2)
	if leadingSpaces(line) != 0 {
		t.Errorf("width 2: leading spaces = %d", leadingSpaces(line))
	}
	line = anchorFrame(frame, 8)
	if leadingSpaces(line) != 1 {
		t.Errorf("width 8: leading spaces = %d, want 1", leadingSpaces(line))
	}
}

func TestCenterLine(t *testing.T) {
	got := centerLine("abcd", "abcd", 10)
	if leadingSpaces(got) != 3 {
		t.Errorf("centerLine pad = %d, want 3", leadingSpaces(got))
	}

	// Text wider than the screen gets no padding.
	got = centerLine("abcdefghij", "abcdefghij", 4)
	if leadingSpaces(got) != 0 {
		t.Errorf("oversized centerLine pad = %d", leadingSpaces(got))
	}
}

func TestExcerptAt(t *testing.T) {
	toks := []string{"one", "two", "three", "four", "five", "six", "seven"}

	if got := excerptAt(toks, 1); got != "two three four five six" {
		t.Errorf("excerptAt(1) = %q", got)
	}
	if got := excerptAt(toks, 5); got != "six seven" {
		t.Errorf("excerptAt near end = %q", got)
	}
	if got := excerptAt(toks, 10); got != "" {
		t.Errorf("excerptAt out of range = %q", got)
	}
	if got := excerptAt(toks, -1); got != "" {
		t.Errorf("excerptAt(-1) = %q", got)
	}
}

func testModel(tokens []string, chapters []reader.ChapterMark) model {
	book := &reader.Book{Title: "Test", Tokens: tokens, Chapters: chapters}
	return model{
		session: reader.NewSession(tokens, chapters, 300),
		book:    book,
		keys:    defaultKeyMap(),
		width:   80,
		height:  24,
	}
}

func TestTocEntries(t *testing.T) {
	chapters := []reader.ChapterMark{
		{Title: "One", Start: 0},
		{Title: "Two", Start: 5},
	}
	toks := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	m := testModel(toks, chapters)
	m.session.ToggleBookmark(7)

	entries := m.tocEntries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 2 chapters + 1 bookmark", len(entries))
	}
	if entries[0].index != 0 || entries[1].index != 5 {
		t.Errorf("chapter indices = %d, %d", entries[0].index, entries[1].index)
	}
	if entries[0].bookmark || entries[1].bookmark {
		t.Error("chapter entries flagged as bookmarks")
	}
	if !entries[2].bookmark || entries[2].index != 7 {
		t.Errorf("bookmark entry = %+v", entries[2])
	}
	if !strings.Contains(entries[2].label, "word 8") {
		t.Errorf("bookmark label = %q", entries[2].label)
	}
}

func TestScheduleTickPaused(t *testing.T) {
	m := testModel([]string{"a", "b"}, nil)
	if cmd := m.scheduleTick(); cmd != nil {
		t.Error("paused session scheduled a tick")
	}
	m.session.Play()
	if cmd := m.scheduleTick(); cmd == nil {
		t.Error("playing session scheduled nothing")
	}
	m.session.WPM = 0
	if cmd := m.scheduleTick(); cmd != nil {
		t.Error("zero rate scheduled a tick")
	}
}

func TestStaleTickDropped(t *testing.T) {
	m := testModel([]string{"a", "b", "c"}, nil)
	m.session.Play()
	m.tickGen = 2

	updated, cmd := m.Update(tickMsg{gen: 1})
	got := updated.(model)
	if got.session.CurrentIndex != 0 {
		t.Errorf("stale tick advanced cursor to %d", got.session.CurrentIndex)
	}
	if cmd != nil {
		t.Error("stale tick rescheduled")
	}
}

func TestTickAdvances(t *testing.T) {
	m := testModel([]string{"a", "b", "c"}, nil)
	m.session.Play()

	updated, cmd := m.Update(tickMsg{gen: m.tickGen})
	got := updated.(model)
	if got.session.CurrentIndex != 1 {
		t.Errorf("tick moved cursor to %d, want 1", got.session.CurrentIndex)
	}
	if cmd == nil {
		t.Error("live tick did not reschedule")
	}
}

func TestTickAtEndPauses(t *testing.T) {
	m := testModel([]string{"a", "b"}, nil)
	m.session.Play()
	m.session.CurrentIndex = 1

	updated, cmd := m.Update(tickMsg{gen: m.tickGen})
	got := updated.(model)
	if got.session.Playing {
		t.Error("playback still running past end of stream")
	}
	if got.session.CurrentIndex != 1 {
		t.Errorf("cursor moved off last token to %d", got.session.CurrentIndex)
	}
	if cmd != nil {
		t.Error("rescheduled past end of stream")
	}
}
