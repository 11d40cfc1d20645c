package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMarkdownExtract(t *testing.T) {
	content := `# Chapter One

First chapter text here.

## Section A

More words follow.

# Chapter Two

Second chapter text.
`
	path := writeTemp(t, "book.md", content)
	book, err := (&MarkdownFormat{}).Extract(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if book.Title != "book" {
		t.Errorf("Title = %q, want book", book.Title)
	}
	if len(book.Chapters) != 3 {
		t.Fatalf("Chapters = %v, want 3", book.Chapters)
	}

	wantTitles := []string{"Chapter One", "Section A", "Chapter Two"}
	for i, ch := range book.Chapters {
		if ch.Title != wantTitles[i] {
			t.Errorf("chapter %d title = %q, want %q", i, ch.Title, wantTitles[i])
		}
	}

	// Each mark points at its header's first word.
	for _, ch := range book.Chapters {
		if ch.Start < 0 || ch.Start >= len(book.Tokens) {
			t.Fatalf("chapter %q start %d out of range", ch.Title, ch.Start)
		}
	}
	if ch := book.Chapters[0]; book.Tokens[ch.Start] != "Chapter" {
		t.Errorf("chapter 0 starts at %q", book.Tokens[ch.Start])
	}
	if ch := book.Chapters[2]; book.Tokens[ch.Start] != "Chapter" {
		t.Errorf("chapter 2 starts at %q", book.Tokens[ch.Start])
	}
	if book.Chapters[1].Start <= book.Chapters[0].Start || book.Chapters[2].Start <= book.Chapters[1].Start {
		t.Errorf("chapter starts not increasing: %v", book.Chapters)
	}
}

func TestMarkdownExtractNoHeaders(t *testing.T) {
	path := writeTemp(t, "notes.md", "just some plain text\nwith no headers at all\n")
	book, err := (&MarkdownFormat{}).Extract(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(book.Chapters) != 1 {
		t.Fatalf("Chapters = %v, want single fallback chapter", book.Chapters)
	}
	if book.Chapters[0].Title != "notes" || book.Chapters[0].Start != 0 {
		t.Errorf("fallback chapter = %+v", book.Chapters[0])
	}
}

func TestMarkdownExtractEmpty(t *testing.T) {
	path := writeTemp(t, "empty.md", "\n\n---\n\n")
	_, err := (&MarkdownFormat{}).Extract(path, zap.NewNop())
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("err = %v, want ErrEmptyContent", err)
	}
}

func TestMarkdownExtractMissingFile(t *testing.T) {
	_, err := (&MarkdownFormat{}).Extract(filepath.Join(t.TempDir(), "nope.md"), zap.NewNop())
	if err == nil {
		t.Error("expected error for missing file")
	}
}
