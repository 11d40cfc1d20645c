//go:build gui

package main

import (
	"sync"
	"testing"
	"time"

	"github.com/flitreader/flit/internal/reader"
)

func newGUIModel(n int) *guiModel {
	toks := make([]string, n)
	for i := range toks {
		toks[i] = "word."
	}
	book := &reader.Book{Title: "Test", Tokens: toks, Chapters: []reader.ChapterMark{{Title: "Test", Start: 0}}}
	return &guiModel{
		session:  reader.NewSession(toks, book.Chapters, 300),
		book:     book,
		fontSize: 72,
	}
}

func TestGUITick(t *testing.T) {
	m := newGUIModel(3)

	if advanced, ended := m.tick(); advanced || ended {
		t.Error("tick while paused did something")
	}

	m.togglePlay()
	if advanced, ended := m.tick(); !advanced || ended {
		t.Error("tick while playing did not advance")
	}

	m.jumpToIndex(2)
	if advanced, ended := m.tick(); advanced || !ended {
		t.Error("tick on last token did not end the stream")
	}
	if st := m.status(); st.playing {
		t.Error("playback still running past end of stream")
	}
}

func TestGUINextDelay(t *testing.T) {
	m := newGUIModel(3)

	// Paused: a short idle poll, not a word delay.
	if d := m.nextDelay(); d != 100*time.Millisecond {
		t.Errorf("paused delay = %v", d)
	}

	m.togglePlay()
	if d := m.nextDelay(); d != reader.Delay("word.", 300) {
		t.Errorf("playing delay = %v", d)
	}

	m.adjustSpeed(wpmStep)
	if d := m.nextDelay(); d != reader.Delay("word.", 350) {
		t.Errorf("delay after speed change = %v", d)
	}
}

func TestGUIAdjustClamps(t *testing.T) {
	m := newGUIModel(3)

	for i := 0; i < 50; i++ {
		m.adjustSpeed(wpmStep)
	}
	if st := m.status(); st.wpm != maxWPM {
		t.Errorf("wpm = %d, want clamp at %d", st.wpm, maxWPM)
	}
	for i := 0; i < 50; i++ {
		m.adjustSpeed(-wpmStep)
	}
	if st := m.status(); st.wpm != minWPM {
		t.Errorf("wpm = %d, want clamp at %d", st.wpm, minWPM)
	}

	for i := 0; i < 100; i++ {
		m.adjustFont(5)
	}
	if st := m.status(); st.fontSize > 200 {
		t.Errorf("fontSize = %v, want at most 200", st.fontSize)
	}
	for i := 0; i < 100; i++ {
		m.adjustFont(-5)
	}
	if st := m.status(); st.fontSize < 20 {
		t.Errorf("fontSize = %v, want at least 20", st.fontSize)
	}
}

// The timer goroutine ticks while event handlers mutate the session; run
// both at once so the race detector can see any unguarded access.
func TestGUIConcurrentAccess(t *testing.T) {
	m := newGUIModel(500)
	m.togglePlay()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.tick()
				m.nextDelay()
				m.status()
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.adjustSpeed(wpmStep)
			m.adjustSpeed(-wpmStep)
			m.jumpSentence(i%2 == 0)
			m.toggleBookmark()
			m.adjustFont(5)
			m.adjustFont(-5)
			m.restart()
			m.togglePlay()
			m.togglePlay()
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}
