package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flitreader/flit/internal/state"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func writeBook(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAddAndGet(t *testing.T) {
	lib := newTestLibrary(t)
	path := writeBook(t, "novel.txt", "some book text here")

	rec, err := lib.Add(path)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.Title != "novel" {
		t.Errorf("Title = %q, want novel", rec.Title)
	}
	if !filepath.IsAbs(rec.Path) {
		t.Errorf("Path not absolute: %q", rec.Path)
	}
	if rec.Hash == "" || rec.AddedAt.IsZero() {
		t.Errorf("incomplete record: %+v", rec)
	}

	got, err := lib.Get(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != rec.ID || got.Hash != rec.Hash {
		t.Errorf("Get = %+v, want %+v", got, rec)
	}
}

func TestAddDeduplicatesByContent(t *testing.T) {
	lib := newTestLibrary(t)
	a := writeBook(t, "copy-a.txt", "identical book content")
	b := writeBook(t, "copy-b.txt", "identical book content")

	first, err := lib.Add(a)
	if err != nil {
		t.Fatal(err)
	}
	second, err := lib.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("re-adding identical content created new record %s", second.ID)
	}

	records, err := lib.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("List = %d records, want 1", len(records))
	}
}

func TestList(t *testing.T) {
	lib := newTestLibrary(t)
	lib.Add(writeBook(t, "alpha.txt", "first book"))
	lib.Add(writeBook(t, "beta.txt", "second book"))

	records, err := lib.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("List = %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.ID == "" || rec.Title == "" {
			t.Errorf("incomplete record: %+v", rec)
		}
	}
}

func TestRemove(t *testing.T) {
	lib := newTestLibrary(t)
	rec, err := lib.Add(writeBook(t, "gone.txt", "soon removed"))
	if err != nil {
		t.Fatal(err)
	}

	// Progress keyed by content hash goes with the record.
	lib.store.SetProgress(rec.Hash, state.Progress{Index: 42})

	if err := lib.Remove(rec.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Get(rec.ID); err == nil {
		t.Error("Get after Remove succeeded")
	}
	if p := lib.store.Progress(rec.Hash); p.Index != 0 {
		t.Errorf("progress survived removal: %+v", p)
	}

	if err := lib.Remove("no-such-id"); err == nil {
		t.Error("Remove of unknown id should fail")
	}
}

func TestAddMissingFile(t *testing.T) {
	lib := newTestLibrary(t)
	if _, err := lib.Add(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
