// Package state persists reading progress, bookmarks, and preferences in a
// small SQLite key-value store.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const (
	dbFileName = "flit.db"
	hashBytes  = 8192 // first 8KB for content hash
)

// Progress is the per-book record written on every position or bookmark
// change and read back once at session start.
type Progress struct {
	Index     int   `json:"current_index"`
	Bookmarks []int `json:"bookmarks,omitempty"`
}

// Prefs holds reader preferences shared across books.
type Prefs struct {
	WPM            int     `json:"wpm"`
	FontSize       float64 `json:"font_size"`
	AltReadingMode bool    `json:"alt_reading_mode"`
}

// DefaultPrefs returns the out-of-the-box preferences.
func DefaultPrefs() Prefs {
	return Prefs{WPM: 300, FontSize: 72}
}

// Store is a key-value store over a single SQLite connection. Values are
// JSON records or raw blobs; keys are namespaced strings.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// Open opens or creates the store at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, err
	}
	err = sqlitex.ExecuteTransient(conn,
		`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB)`, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{conn: conn}, nil
}

// OpenDefault opens the store under XDG_STATE_HOME/flit (or
// ~/.local/state/flit).
func OpenDefault() (*Store, error) {
	dir := stateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, dbFileName))
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "flit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "flit")
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Get returns the value stored under key, with ok false when absent.
func (s *Store) Get(key string) (value []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err = sqlitex.Execute(s.conn, `SELECT value FROM kv WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				buf := make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, buf)
				value = buf
				ok = true
				return nil
			},
		})
	return value, ok, err
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlitex.Execute(s.conn,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		&sqlitex.ExecOptions{Args: []any{key, value}})
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlitex.Execute(s.conn, `DELETE FROM kv WHERE key = ?`,
		&sqlitex.ExecOptions{Args: []any{key}})
}

// List returns all entries whose key starts with prefix.
func (s *Store) List(prefix string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte)
	err := sqlitex.Execute(s.conn,
		`SELECT key, value FROM kv WHERE key LIKE ? || '%'`,
		&sqlitex.ExecOptions{
			Args: []any{prefix},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				buf := make([]byte, stmt.ColumnLen(1))
				stmt.ColumnBytes(1, buf)
				out[stmt.ColumnText(0)] = buf
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Progress returns the saved progress for a book. A missing or corrupt
// record restores to the zero value rather than failing; the caller clamps
// the index into the current stream's bounds.
func (s *Store) Progress(bookID string) Progress {
	var p Progress
	data, ok, err := s.Get("progress:" + bookID)
	if err != nil || !ok {
		return Progress{}
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Progress{}
	}
	if p.Index < 0 {
		p.Index = 0
	}
	return p
}

// SetProgress saves progress for a book.
func (s *Store) SetProgress(bookID string, p Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.Put("progress:"+bookID, data)
}

// ClearProgress removes the saved progress for a book.
func (s *Store) ClearProgress(bookID string) error {
	return s.Delete("progress:" + bookID)
}

// GetPrefs returns saved preferences, falling back to defaults when absent
// or unreadable.
func (s *Store) GetPrefs() Prefs {
	data, ok, err := s.Get("prefs")
	if err != nil || !ok {
		return DefaultPrefs()
	}
	p := DefaultPrefs()
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPrefs()
	}
	if p.WPM < 0 {
		p.WPM = 0
	}
	return p
}

// SetPrefs saves preferences.
func (s *Store) SetPrefs(p Prefs) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.Put("prefs", data)
}

// ComputeHash generates a content hash identifying a file, independent of
// its name or location.
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil
}
