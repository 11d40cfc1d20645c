//go:build !gui

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flitreader/flit/internal/library"
	"github.com/flitreader/flit/internal/reader"
	"github.com/flitreader/flit/internal/state"
)

var (
	orpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	bookmarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAFF"))

	// Context lines fade with distance from the current word.
	contextStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		2: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		3: lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
	}
)

type keyMap struct {
	PlayPause   key.Binding
	SpeedUp     key.Binding
	SpeedDown   key.Binding
	PrevSent    key.Binding
	NextSent    key.Binding
	PrevChapter key.Binding
	NextChapter key.Binding
	Bookmark    key.Binding
	NextBkmk    key.Binding
	AltMode     key.Binding
	TOC         key.Binding
	Restart     key.Binding
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Escape      key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("SPACE", "pause/play")),
		SpeedUp:     key.NewBinding(key.WithKeys("+", "=", "up"), key.WithHelp("↑/+", "faster")),
		SpeedDown:   key.NewBinding(key.WithKeys("-", "down"), key.WithHelp("↓/-", "slower")),
		PrevSent:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev sentence")),
		NextSent:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next sentence")),
		PrevChapter: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev chapter")),
		NextChapter: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next chapter")),
		Bookmark:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
		NextBkmk:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next bookmark")),
		AltMode:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "context mode")),
		TOC:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "contents")),
		Restart:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Up:          key.NewBinding(key.WithKeys("up", "k")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
		Enter:       key.NewBinding(key.WithKeys("enter")),
		Escape:      key.NewBinding(key.WithKeys("esc")),
		Quit:        key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// tocEntry is one row of the contents overlay: a chapter or a bookmark.
type tocEntry struct {
	label    string
	index    int
	bookmark bool
}

type model struct {
	session *reader.Session
	book    *reader.Book
	store   *state.Store
	log     *zap.Logger
	bookID  string
	keys    keyMap

	altMode   bool
	showTOC   bool
	tocCursor int

	// tickGen invalidates pending ticks: any mutation that changes what the
	// next tick would do bumps it, and stale ticks are dropped on arrival.
	tickGen  int
	quitting bool
	width    int
	height   int
}

type tickMsg struct{ gen int }

func (m model) scheduleTick() tea.Cmd {
	if !m.session.Playing || m.session.WPM <= 0 {
		return nil
	}
	d := reader.Delay(m.session.CurrentToken(), m.session.WPM)
	gen := m.tickGen
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m model) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showTOC {
			return m.updateTOC(msg)
		}
		return m.updateReading(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if msg.gen != m.tickGen || !m.session.Playing {
			return m, nil
		}
		if !m.session.Advance() {
			// End of book: stop on the last word.
			m.session.Pause()
			m.saveProgress()
			return m, nil
		}
		if m.session.CurrentIndex%50 == 0 {
			m.saveProgress()
		}
		return m, m.scheduleTick()
	}

	return m, nil
}

func (m model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PlayPause):
		if m.session.Playing {
			m.session.Pause()
			m.tickGen++
			m.saveProgress()
			return m, nil
		}
		if m.session.Play() {
			m.tickGen++
			return m, m.scheduleTick()
		}
		return m, nil

	case key.Matches(msg, m.keys.SpeedUp):
		m.session.WPM = clampWPM(m.session.WPM + wpmStep)
		m.savePrefs()
		return m.reschedule()

	case key.Matches(msg, m.keys.SpeedDown):
		m.session.WPM = clampWPM(m.session.WPM - wpmStep)
		m.savePrefs()
		return m.reschedule()

	case key.Matches(msg, m.keys.PrevSent):
		m.pauseOnFirstArrow()
		m.session.JumpToPrevSentence()
		m.saveProgress()
		return m.reschedule()

	case key.Matches(msg, m.keys.NextSent):
		m.pauseOnFirstArrow()
		m.session.JumpToNextSentence()
		m.saveProgress()
		return m.reschedule()

	case key.Matches(msg, m.keys.PrevChapter):
		m.session.JumpToPrevChapter()
		m.saveProgress()
		return m.reschedule()

	case key.Matches(msg, m.keys.NextChapter):
		m.session.JumpToNextChapter()
		m.saveProgress()
		return m.reschedule()

	case key.Matches(msg, m.keys.Bookmark):
		m.session.ToggleBookmark(m.session.CurrentIndex)
		m.saveProgress()
		return m, nil

	case key.Matches(msg, m.keys.NextBkmk):
		m.session.NextBookmark()
		m.saveProgress()
		return m.reschedule()

	case key.Matches(msg, m.keys.AltMode):
		m.altMode = !m.altMode
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.TOC):
		m.session.Pause()
		m.tickGen++
		m.showTOC = true
		m.tocCursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		m.session.JumpTo(0)
		if m.store != nil && m.bookID != "" {
			m.store.ClearProgress(m.bookID)
		}
		return m.reschedule()

	case key.Matches(msg, m.keys.Quit):
		m.saveProgress()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) updateTOC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.tocEntries()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.tocCursor > 0 {
			m.tocCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.tocCursor < len(entries)-1 {
			m.tocCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.tocCursor < len(entries) {
			m.session.JumpTo(entries[m.tocCursor].index)
			m.saveProgress()
		}
		m.showTOC = false
		return m, nil

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.TOC):
		m.showTOC = false
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.saveProgress()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// reschedule cancels any pending tick and, if still playing, schedules a
// fresh one from the current position.
func (m model) reschedule() (tea.Model, tea.Cmd) {
	m.tickGen++
	if m.session.Playing {
		return m, m.scheduleTick()
	}
	return m, nil
}

// pauseOnFirstArrow pauses on an isolated arrow press but lets rapid
// repeats keep scrubbing without fighting playback.
func (m *model) pauseOnFirstArrow() {
	now := time.Now()
	if now.Sub(m.session.LastArrowPress) > 500*time.Millisecond {
		m.session.Pause()
	}
	m.session.LastArrowPress = now
}

func (m model) saveProgress() {
	saveSession(m.session, m.store, m.bookID)
}

func (m model) savePrefs() {
	if m.store == nil {
		return
	}
	prefs := m.store.GetPrefs()
	prefs.WPM = m.session.WPM
	prefs.AltReadingMode = m.altMode
	m.store.SetPrefs(prefs)
}

func (m model) tocEntries() []tocEntry {
	var entries []tocEntry
	for _, ch := range m.book.Chapters {
		entries = append(entries, tocEntry{
			label: fmt.Sprintf("%s (%d%%)", ch.Title, m.session.ChapterPercent(ch.Start)),
			index: ch.Start,
		})
	}
	for _, idx := range m.session.Bookmarks {
		entries = append(entries, tocEntry{
			label:    fmt.Sprintf("⚑ word %d: %s", idx+1, excerptAt(m.session.Tokens, idx)),
			index:    idx,
			bookmark: true,
		})
	}
	return entries
}

func excerptAt(tokens []string, idx int) string {
	if idx < 0 || idx >= len(tokens) {
		return ""
	}
	end := idx + 5
	if end > len(tokens) {
		end = len(tokens)
	}
	return strings.Join(tokens[idx:end], " ")
}

func (m model) View() string {
	if m.quitting {
		if m.session.AtEnd() {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}
	if len(m.session.Tokens) == 0 {
		return "No text to read."
	}
	if m.showTOC {
		return m.viewTOC()
	}
	if m.altMode {
		return m.viewContext()
	}
	return m.viewWord()
}

func (m model) statusLine() string {
	current, total := m.session.Progress()
	parts := []string{
		fmt.Sprintf("Word %d/%d", current, total),
		fmt.Sprintf("%d WPM", m.session.WPM),
	}
	if title := m.session.CurrentChapterTitle(); title != "" {
		parts = append(parts, title)
	}
	if mins, ok := m.session.MinutesLeft(); ok {
		parts = append(parts, fmt.Sprintf("~%dm left", mins))
	}
	status := statusStyle.Render(strings.Join(parts, " | "))
	if m.session.IsBookmarked(m.session.CurrentIndex) {
		status += bookmarkStyle.Render("⚑")
	}
	if !m.session.Playing {
		status += pausedStyle.Render(" [PAUSED]")
	}
	return status
}

func (m model) controlsLine() string {
	return controlsStyle.Render(
		"SPACE: pause/play  ↑/↓: speed  ←/→: sentence  [/]: chapter  b: bookmark  t: contents  a: context  q: quit")
}

func (m model) viewWord() string {
	frame := reader.SplitWord(m.session.CurrentToken()).Frame()

	avail := m.height - 2
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(anchorFrame(frame, m.width))
	for i := 0; i < avail-vPad; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(m.controlsLine())
	return sb.String()
}

func (m model) viewContext() string {
	maxChars := m.width - 4
	if maxChars < 20 {
		maxChars = 20
	}
	win := reader.ComposeContext(m.session.Tokens, m.session.CurrentIndex, maxChars)

	avail := m.height - 2
	lines := len(win.Before) + len(win.After) + 1
	vPad := (avail - lines) / 2
	if vPad < 0 {
		vPad = 0
	}

	var sb strings.Builder
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}
	for _, line := range win.Before {
		sb.WriteString(centerLine(contextStyles[line.Distance].Render(line.Text), line.Text, m.width))
		sb.WriteString("\n")
	}
	frame := reader.SplitWord(m.session.CurrentToken()).Frame()
	plain := frame.Left + frame.Center + frame.Right
	styled := wordStyle.Render(frame.Left) + orpStyle.Render(frame.Center) + wordStyle.Render(frame.Right)
	sb.WriteString(centerLine(styled, plain, m.width))
	sb.WriteString("\n")
	for _, line := range win.After {
		sb.WriteString(centerLine(contextStyles[line.Distance].Render(line.Text), line.Text, m.width))
		sb.WriteString("\n")
	}
	for i := 0; i < avail-vPad-lines; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(m.controlsLine())
	return sb.String()
}

func (m model) viewTOC() string {
	entries := m.tocEntries()
	var sb strings.Builder
	sb.WriteString(statusStyle.Render("Contents") + "\n\n")
	for i, e := range entries {
		cursor := "  "
		line := e.label
		if i == m.tocCursor {
			cursor = "> "
			line = selectedStyle.Render(line)
		} else if e.bookmark {
			line = bookmarkStyle.Render(line)
		}
		sb.WriteString(cursor + line + "\n")
	}
	sb.WriteString("\n" + controlsStyle.Render("↑/↓: move  ENTER: jump  ESC: close"))
	return sb.String()
}

// anchorFrame pads the word so its ORP character sits at the screen's
// horizontal center, keeping the pivot fixed across words.
func anchorFrame(frame reader.Frame, width int) string {
	pad := width/2 - utf8.RuneCountInString(frame.Left)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) +
		wordStyle.Render(frame.Left) +
		orpStyle.Render(frame.Center) +
		wordStyle.Render(frame.Right)
}

// centerLine centers styled text using the plain text's width.
func centerLine(styled, plain string, width int) string {
	pad := (width - utf8.RuneCountInString(plain)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + styled
}

func newModel(src source, store *state.Store, log *zap.Logger, wpm int, altMode bool) model {
	return model{
		session: reader.NewSession(src.book.Tokens, src.book.Chapters, wpm),
		book:    src.book,
		store:   store,
		log:     log,
		bookID:  src.id,
		keys:    defaultKeyMap(),
		altMode: altMode,
		width:   80,
		height:  24,
	}
}

func main() {
	app := &cli.Command{
		Name:    "flit",
		Usage:   "RSVP speed reader for the terminal",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "wpm", Aliases: []string{"w"}, Usage: "words per minute (overrides saved preference)"},
			&cli.BoolFlag{Name: "fresh", Usage: "ignore saved reading position"},
			&cli.BoolFlag{Name: "alt", Usage: "start in multi-line context mode"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose logging"},
		},
		ArgsUsage: "[FILE | LIBRARY-ID]",
		Action:    runRead,
		Commands: []*cli.Command{
			{
				Name:      "toc",
				Usage:     "Print the chapter map of a book",
				ArgsUsage: "FILE",
				Action:    runTOC,
			},
			{
				Name:  "library",
				Usage: "Manage the book catalog",
				Commands: []*cli.Command{
					{Name: "list", Usage: "List cataloged books", Action: runLibraryList},
					{Name: "add", Usage: "Catalog book file(s)", ArgsUsage: "FILE...", Action: runLibraryAdd},
					{Name: "rm", Usage: "Remove a book and its saved progress", ArgsUsage: "ID", Action: runLibraryRemove},
				},
			},
			{
				Name:   "formats",
				Usage:  "List supported input formats",
				Action: runFormats,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRead(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("debug"))
	defer log.Sync()

	store, err := state.OpenDefault()
	if err != nil {
		log.Warn("state store unavailable, nothing will be saved", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	src, err := resolveSource(cmd.Args().Get(0), store, log)
	if err != nil {
		return err
	}

	prefs := state.DefaultPrefs()
	if store != nil {
		prefs = store.GetPrefs()
	}
	wpm := prefs.WPM
	if flagWPM := int(cmd.Int("wpm")); flagWPM > 0 {
		wpm = clampWPM(flagWPM)
	}

	m := newModel(src, store, log, wpm, prefs.AltReadingMode || cmd.Bool("alt"))
	restoreSession(m.session, store, src.id, cmd.Bool("fresh"))
	m.session.Play()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runTOC(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("debug"))
	defer log.Sync()

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: flit toc FILE")
	}
	book, err := reader.Open(cmd.Args().Get(0), log)
	if err != nil {
		return err
	}

	fmt.Printf("%s", book.Title)
	if book.Author != "" {
		fmt.Printf(" — %s", book.Author)
	}
	fmt.Printf(" (%d words)\n", len(book.Tokens))
	for _, ch := range book.Chapters {
		pct := 0
		if len(book.Tokens) > 0 {
			pct = ch.Start * 100 / len(book.Tokens)
		}
		fmt.Printf("  %6d  %3d%%  %s\n", ch.Start, pct, ch.Title)
	}
	return nil
}

func runLibraryList(ctx context.Context, cmd *cli.Command) error {
	store, err := state.OpenDefault()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := library.New(store).List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Library is empty. Add books with: flit library add FILE")
		return nil
	}
	for _, rec := range records {
		line := rec.Title
		if rec.Author != "" {
			line += " — " + rec.Author
		}
		fmt.Printf("%s  %s\n", rec.ID, line)
	}
	return nil
}

func runLibraryAdd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("usage: flit library add FILE...")
	}
	store, err := state.OpenDefault()
	if err != nil {
		return err
	}
	defer store.Close()

	lib := library.New(store)
	for _, path := range cmd.Args().Slice() {
		rec, err := lib.Add(path)
		if err != nil {
			return fmt.Errorf("add %s: %w", path, err)
		}
		fmt.Printf("%s  %s\n", rec.ID, rec.Title)
	}
	return nil
}

func runLibraryRemove(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: flit library rm ID")
	}
	store, err := state.OpenDefault()
	if err != nil {
		return err
	}
	defer store.Close()

	return library.New(store).Remove(cmd.Args().Get(0))
}

func runFormats(ctx context.Context, cmd *cli.Command) error {
	for _, f := range reader.SupportedFormats() {
		fmt.Println(f)
	}
	fmt.Println("plain text (anything else)")
	return nil
}
