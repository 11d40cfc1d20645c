//go:build gui

package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/flitreader/flit/internal/reader"
	"github.com/flitreader/flit/internal/state"
)

// guiModel wraps the session for the GUI. The timer goroutine and the fyne
// event handlers both touch the session, so every access goes through a
// method that holds mu.
type guiModel struct {
	mu       sync.Mutex
	session  *reader.Session
	book     *reader.Book
	store    *state.Store
	bookID   string
	fontSize float64
}

// guiStatus is a consistent snapshot of what the display needs.
type guiStatus struct {
	token      string
	current    int
	total      int
	wpm        int
	fontSize   float64
	playing    bool
	bookmarked bool
}

func (m *guiModel) status() guiStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, total := m.session.Progress()
	return guiStatus{
		token:      m.session.CurrentToken(),
		current:    current,
		total:      total,
		wpm:        m.session.WPM,
		fontSize:   m.fontSize,
		playing:    m.session.Playing,
		bookmarked: m.session.IsBookmarked(m.session.CurrentIndex),
	}
}

// tick advances one token. Reports whether the cursor moved and whether the
// stream ended (which also pauses playback).
func (m *guiModel) tick() (advanced, ended bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Playing {
		return false, false
	}
	if m.session.Advance() {
		return true, false
	}
	m.session.Pause()
	m.saveProgressLocked()
	return false, true
}

// nextDelay returns how long to wait before the next tick. While paused the
// timer idles on a short poll.
func (m *guiModel) nextDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Playing || m.session.WPM <= 0 {
		return 100 * time.Millisecond
	}
	return reader.Delay(m.session.CurrentToken(), m.session.WPM)
}

func (m *guiModel) togglePlay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Playing {
		m.session.Pause()
		m.saveProgressLocked()
		return
	}
	m.session.Play()
}

func (m *guiModel) adjustSpeed(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.WPM = clampWPM(m.session.WPM + delta)
	m.savePrefsLocked()
}

func (m *guiModel) adjustFont(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.fontSize + delta
	if next < 20 || next > 200 {
		return
	}
	m.fontSize = next
	m.savePrefsLocked()
}

func (m *guiModel) jumpSentence(forward bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if now.Sub(m.session.LastArrowPress) > 500*time.Millisecond {
		m.session.Pause()
	}
	m.session.LastArrowPress = now
	if forward {
		m.session.JumpToNextSentence()
	} else {
		m.session.JumpToPrevSentence()
	}
	m.saveProgressLocked()
}

func (m *guiModel) jumpToIndex(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.JumpTo(idx)
	m.saveProgressLocked()
}

func (m *guiModel) toggleBookmark() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.ToggleBookmark(m.session.CurrentIndex)
	m.saveProgressLocked()
}

func (m *guiModel) pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Pause()
}

func (m *guiModel) restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.JumpTo(0)
	if m.store != nil && m.bookID != "" {
		m.store.ClearProgress(m.bookID)
	}
}

func (m *guiModel) saveProgress() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveProgressLocked()
}

// saveProgressLocked writes position and bookmarks; callers hold mu.
func (m *guiModel) saveProgressLocked() {
	saveSession(m.session, m.store, m.bookID)
}

// savePrefsLocked writes WPM and font size; callers hold mu.
func (m *guiModel) savePrefsLocked() {
	if m.store == nil {
		return
	}
	prefs := m.store.GetPrefs()
	prefs.WPM = m.session.WPM
	prefs.FontSize = m.fontSize
	m.store.SetPrefs(prefs)
}

// createWordDisplay renders a word with its ORP character anchored at the
// horizontal center of the window.
func createWordDisplay(token string, fontSize float32, windowWidth float32) *fyne.Container {
	frame := reader.SplitWord(token).Frame()

	beforeText := canvas.NewText(frame.Left, color.White)
	beforeText.TextSize = fontSize
	beforeText.TextStyle.Bold = true

	focusText := canvas.NewText(frame.Center, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	focusText.TextSize = fontSize
	focusText.TextStyle.Bold = true

	afterText := canvas.NewText(frame.Right, color.White)
	afterText.TextSize = fontSize
	afterText.TextStyle.Bold = true

	beforeSize := beforeText.MinSize()
	focusSize := focusText.MinSize()

	centerX := windowWidth / 2
	beforeX := centerX - beforeSize.Width
	if beforeX < 0 {
		beforeX = 0
	}

	c := &fyne.Container{
		Layout: &centerVerticalLayout{},
		Objects: []fyne.CanvasObject{
			beforeText,
			focusText,
			afterText,
		},
	}

	beforeText.Move(fyne.NewPos(beforeX, 0))
	focusText.Move(fyne.NewPos(centerX, 0))
	afterText.Move(fyne.NewPos(centerX+focusSize.Width, 0))

	return c
}

type centerVerticalLayout struct{}

func (l *centerVerticalLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var maxH float32
	for _, o := range objects {
		if size := o.MinSize(); size.Height > maxH {
			maxH = size.Height
		}
	}
	return fyne.NewSize(0, maxH)
}

func (l *centerVerticalLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	var maxH float32
	for _, o := range objects {
		if objSize := o.MinSize(); objSize.Height > maxH {
			maxH = objSize.Height
		}
	}
	y := (size.Height - maxH) / 2
	if y < 0 {
		y = 0
	}
	for _, o := range objects {
		pos := o.Position()
		o.Move(fyne.NewPos(pos.X, y))
		o.Resize(o.MinSize())
	}
}

func main() {
	wpmFlag := flag.Int("w", 0, "Words per minute (overrides saved preference)")
	freshStart := flag.Bool("fresh", false, "Ignore saved reading position")
	showVersion := flag.Bool("v", false, "Show version information")
	debug := flag.Bool("debug", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Flit - GUI Speed Reading Tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  flit [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  SPACE    Pause/play\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓      Speed up/down by 50 WPM\n")
		fmt.Fprintf(os.Stderr, "  ←/→      Jump to previous/next sentence\n")
		fmt.Fprintf(os.Stderr, "  +/-      Font size\n")
		fmt.Fprintf(os.Stderr, "  T        Table of contents\n")
		fmt.Fprintf(os.Stderr, "  B        Toggle bookmark\n")
		fmt.Fprintf(os.Stderr, "  R        Restart from beginning\n")
		fmt.Fprintf(os.Stderr, "  F        Fullscreen\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("flit %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	log := newLogger(*debug)
	defer log.Sync()

	store, err := state.OpenDefault()
	if err != nil {
		log.Warn("state store unavailable, nothing will be saved", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	src, err := resolveSource(flag.Arg(0), store, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	prefs := state.DefaultPrefs()
	if store != nil {
		prefs = store.GetPrefs()
	}
	wpm := prefs.WPM
	if *wpmFlag > 0 {
		wpm = clampWPM(*wpmFlag)
	}

	m := &guiModel{
		session:  reader.NewSession(src.book.Tokens, src.book.Chapters, wpm),
		book:     src.book,
		store:    store,
		bookID:   src.id,
		fontSize: prefs.FontSize,
	}
	restoreSession(m.session, store, src.id, *freshStart)
	// GUI starts paused.

	a := app.New()
	w := a.NewWindow("flit - Speed Reader")

	st := m.status()
	statusLabel := widget.NewLabel(fmt.Sprintf("Word %d/%d | %d WPM [PAUSED]", st.current, st.total, st.wpm))
	statusLabel.Alignment = fyne.TextAlignCenter

	controlsLabel := widget.NewLabel("SPACE: pause  ↑/↓: speed  +/-: font  ←/→: sentence  B: bookmark  T: TOC  R: restart  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	wordContainer := container.NewMax()

	tocVisible := false
	var tocPanel *container.Split

	tocList := widget.NewList(
		func() int { return len(m.book.Chapters) },
		func() fyne.CanvasObject { return widget.NewLabel("Chapter") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ch := m.book.Chapters[id]
			label := obj.(*widget.Label)
			label.SetText(fmt.Sprintf("%s (%d%%)", ch.Title, m.session.ChapterPercent(ch.Start)))
		},
	)

	readingContent := container.NewBorder(
		statusLabel,
		controlsLabel,
		nil, nil,
		wordContainer,
	)

	tocContainer := container.NewBorder(
		widget.NewLabel("Table of Contents"),
		widget.NewLabel("Click to jump • T to close"),
		nil, nil,
		tocList,
	)
	tocPanel = container.NewHSplit(tocContainer, readingContent)
	tocPanel.Offset = 0.33
	tocContainer.Hide()

	mainContainer := container.NewMax(tocPanel)

	done := make(chan bool)
	restart := make(chan struct{}, 1)
	var closeOnce sync.Once

	updateDisplay := func() {
		canvasWidth := w.Canvas().Size().Width
		if canvasWidth <= 0 {
			canvasWidth = 800
		}

		st := m.status()
		display := createWordDisplay(st.token, float32(st.fontSize), canvasWidth)
		wordContainer.Objects = []fyne.CanvasObject{display}
		wordContainer.Refresh()

		pauseText := ""
		if !st.playing {
			pauseText = " [PAUSED]"
		}
		bookmark := ""
		if st.bookmarked {
			bookmark = " ⚑"
		}
		statusLabel.SetText(fmt.Sprintf("Word %d/%d | %d WPM | Font: %.0f%s%s",
			st.current, st.total, st.wpm, st.fontSize, bookmark, pauseText))
	}

	tocList.OnSelected = func(id widget.ListItemID) {
		if id < len(m.book.Chapters) {
			m.jumpToIndex(m.book.Chapters[id].Start)
			tocVisible = false
			tocContainer.Hide()
			tocPanel.Refresh()
			updateDisplay()
		}
	}

	// kick cancels the pending wait so the next one starts from the
	// current position and rate.
	kick := func() {
		select {
		case restart <- struct{}{}:
		default:
		}
	}

	go func() {
		timer := time.NewTimer(m.nextDelay())
		defer timer.Stop()
		for {
			select {
			case <-done:
				return
			case <-restart:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(m.nextDelay())
			case <-timer.C:
				if advanced, ended := m.tick(); advanced || ended {
					fyne.Do(updateDisplay)
				}
				timer.Reset(m.nextDelay())
			}
		}
	}()

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			m.togglePlay()
			kick()
			updateDisplay()

		case fyne.KeyUp:
			m.adjustSpeed(wpmStep)
			kick()
			updateDisplay()

		case fyne.KeyDown:
			m.adjustSpeed(-wpmStep)
			kick()
			updateDisplay()

		case fyne.KeyLeft:
			m.jumpSentence(false)
			kick()
			updateDisplay()

		case fyne.KeyRight:
			m.jumpSentence(true)
			kick()
			updateDisplay()

		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())

		case fyne.KeyQ:
			m.saveProgress()
			closeOnce.Do(func() {
				close(done)
			})
			a.Quit()
		}
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 't', 'T':
			tocVisible = !tocVisible
			if tocVisible {
				m.pause()
				kick()
				tocContainer.Show()
			} else {
				tocContainer.Hide()
			}
			tocPanel.Refresh()
			updateDisplay()

		case 'b', 'B':
			m.toggleBookmark()
			updateDisplay()

		case 'r', 'R':
			m.restart()
			kick()
			updateDisplay()

		case '+', '=':
			m.adjustFont(5)
			updateDisplay()
		case '-':
			m.adjustFont(-5)
			updateDisplay()
		}
	})

	w.Resize(fyne.NewSize(800, 600))
	w.SetContent(mainContainer)

	w.SetOnClosed(func() {
		m.saveProgress()
		closeOnce.Do(func() {
			close(done)
		})
	})

	// Initialize first word after window shows
	go func() {
		time.Sleep(100 * time.Millisecond)
		fyne.Do(updateDisplay)
	}()

	w.ShowAndRun()
}
