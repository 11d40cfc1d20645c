package reader

import "errors"

// ErrEmptyContent means extraction produced zero tokens. Fatal to opening
// the book; nothing is partially committed.
var ErrEmptyContent = errors.New("no readable text in source")

// Book is the immutable result of content extraction: the full token
// stream, the chapter map, and whatever metadata the source offered.
type Book struct {
	Title    string
	Author   string
	Tokens   []string
	Chapters []ChapterMark
}

// NewBook wraps already-normalized text as a single-chapter book.
func NewBook(title string, tokens []string) (*Book, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyContent
	}
	if title == "" {
		title = "Document"
	}
	return &Book{
		Title:    title,
		Tokens:   tokens,
		Chapters: []ChapterMark{{Title: title, Start: 0}},
	}, nil
}
