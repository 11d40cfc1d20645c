package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flitreader/flit/internal/library"
	"github.com/flitreader/flit/internal/reader"
	"github.com/flitreader/flit/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	minWPM  = 100
	maxWPM  = 1500
	wpmStep = 50
)

func clampWPM(wpm int) int {
	if wpm < minWPM {
		return minWPM
	}
	if wpm > maxWPM {
		return maxWPM
	}
	return wpm
}

// newLogger builds the console logger. Quiet by default so diagnostics
// don't fight the reading display; --debug opens it up.
func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// source is an opened book plus the identity used to key saved progress.
// ID is empty for stdin input, which has no stable identity to save under.
type source struct {
	book *reader.Book
	path string
	id   string
}

// resolveSource opens the book named by arg: a file path, a library record
// id, or stdin when arg is empty.
func resolveSource(arg string, store *state.Store, log *zap.Logger) (source, error) {
	if arg == "" {
		return readStdin()
	}

	path := arg
	if _, err := os.Stat(path); err != nil && store != nil {
		// Not a file; maybe a library id.
		rec, lerr := library.New(store).Get(arg)
		if lerr != nil {
			return source{}, fmt.Errorf("no such file or library id '%s'", arg)
		}
		path = rec.Path
	}

	book, err := reader.Open(path, log)
	if err != nil {
		return source{}, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	id, err := state.ComputeHash(path)
	if err != nil {
		log.Warn("cannot hash source, progress will not be saved", zap.Error(err))
		id = ""
	}
	return source{book: book, path: path, id: id}, nil
}

func readStdin() (source, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return source{}, fmt.Errorf("no input provided; provide a file or pipe text to stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return source{}, fmt.Errorf("error reading stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return source{}, fmt.Errorf("no text to read")
	}
	book, err := reader.NewBook("stdin", reader.Normalize(string(data)))
	if err != nil {
		return source{}, err
	}
	return source{book: book}, nil
}

// restoreSession applies saved progress to a fresh session, clamping a
// stale index into the stream's bounds.
func restoreSession(s *reader.Session, store *state.Store, id string, fresh bool) {
	if store == nil || id == "" || fresh {
		return
	}
	p := store.Progress(id)
	if p.Index > 0 {
		s.JumpTo(p.Index)
	}
	s.SetBookmarks(p.Bookmarks)
}

// saveSession writes position and bookmarks back to the store.
func saveSession(s *reader.Session, store *state.Store, id string) {
	if store == nil || id == "" {
		return
	}
	_ = store.SetProgress(id, state.Progress{
		Index:     s.CurrentIndex,
		Bookmarks: s.Bookmarks,
	})
}
