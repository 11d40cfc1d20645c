// Package library catalogs imported books. Records live in the state
// store under generated identifiers; book content stays on disk.
package library

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flitreader/flit/internal/reader"
	"github.com/flitreader/flit/internal/state"
)

const keyPrefix = "library:"

// Record describes one cataloged book.
type Record struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	Hash    string    `json:"hash"`
	Title   string    `json:"title"`
	Author  string    `json:"author,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Library is the catalog of imported books.
type Library struct {
	store *state.Store
}

// New wraps a state store as a library.
func New(store *state.Store) *Library {
	return &Library{store: store}
}

// Add catalogs a book file. Re-adding a file with identical content
// returns the existing record. EPUB metadata fills title and author; other
// formats fall back to the file name.
func (l *Library) Add(path string) (Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Record{}, err
	}
	hash, err := state.ComputeHash(abs)
	if err != nil {
		return Record{}, err
	}

	records, err := l.List()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.Hash == hash {
			return rec, nil
		}
	}

	rec := Record{
		ID:      uuid.NewString(),
		Path:    abs,
		Hash:    hash,
		AddedAt: time.Now().UTC(),
	}
	rec.Title, rec.Author = probeMetadata(abs)

	if cover, _, err := reader.CoverImage(abs); err == nil {
		if err := l.store.Put("cover:"+hash, cover); err != nil {
			return Record{}, err
		}
	}

	if err := l.put(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func probeMetadata(path string) (title, author string) {
	if strings.EqualFold(filepath.Ext(path), ".epub") {
		if t, a, err := reader.Metadata(path); err == nil && t != "" {
			return t, a
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)), ""
}

// List returns all records, newest first.
func (l *Library) List() ([]Record, error) {
	entries, err := l.store.List(keyPrefix)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(entries))
	for key, data := range entries {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			// Unreadable record: skip rather than break the whole catalog.
			continue
		}
		if rec.ID == "" {
			rec.ID = strings.TrimPrefix(key, keyPrefix)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].AddedAt.Equal(records[j].AddedAt) {
			return records[i].Title < records[j].Title
		}
		return records[i].AddedAt.After(records[j].AddedAt)
	})
	return records, nil
}

// Get returns the record with the given id.
func (l *Library) Get(id string) (Record, error) {
	data, ok, err := l.store.Get(keyPrefix + id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("no book with id %s", id)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("unreadable record %s: %w", id, err)
	}
	return rec, nil
}

// Remove drops a record along with its saved progress and cover.
func (l *Library) Remove(id string) error {
	rec, err := l.Get(id)
	if err != nil {
		return err
	}
	if err := l.store.ClearProgress(rec.Hash); err != nil {
		return err
	}
	if err := l.store.Delete("cover:" + rec.Hash); err != nil {
		return err
	}
	return l.store.Delete(keyPrefix + id)
}

// Cover returns the stored cover image for a record, if any.
func (l *Library) Cover(id string) ([]byte, bool, error) {
	rec, err := l.Get(id)
	if err != nil {
		return nil, false, err
	}
	return l.store.Get("cover:" + rec.Hash)
}

func (l *Library) put(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.store.Put(keyPrefix+rec.ID, data)
}
