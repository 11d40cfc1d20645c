package reader

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// MarkdownFormat implements Format for Markdown files. Headers become
// chapter marks; the header text itself stays in the token stream.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// headerRe matches markdown headers (# to ######).
var headerRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func (f *MarkdownFormat) Extract(filename string, log *zap.Logger) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		tokens   []string
		chapters []ChapterMark
		pending  []string
	)
	flush := func() {
		if len(pending) > 0 {
			tokens = append(tokens, Normalize(strings.Join(pending, "\n"))...)
			pending = nil
		}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if m := headerRe.FindStringSubmatch(line); m != nil {
			// The chapter starts at its header's first word, so flush
			// accumulated text before recording the mark.
			flush()
			chapters = append(chapters, ChapterMark{
				Title: strings.TrimSpace(m[2]),
				Start: len(tokens),
			})
		}
		pending = append(pending, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(tokens) == 0 {
		return nil, ErrEmptyContent
	}
	if len(chapters) == 0 {
		return NewBook(baseTitle(filename), tokens)
	}
	return &Book{
		Title:    baseTitle(filename),
		Tokens:   tokens,
		Chapters: chapters,
	}, nil
}
