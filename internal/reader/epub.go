package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

// Extract walks the spine in order, pruning non-content markup from each
// section, tokenizing what remains, and recording a chapter mark wherever
// the navigation tree names the section. A section that fails to load or
// parse is skipped, not fatal; a book with no extractable text at all is.
func (f *EPUBFormat) Extract(filename string, log *zap.Logger) (*Book, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]

	nav, err := loadNavTree(filename, book)
	if err != nil {
		log.Debug("no usable navigation tree", zap.String("file", filename), zap.Error(err))
	}

	var (
		tokens   []string
		chapters []ChapterMark
		skipped  error
	)

	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		section, err := loadSection(ref.Item)
		if err != nil {
			log.Warn("skipping unreadable section",
				zap.String("href", ref.Item.HREF), zap.Error(err))
			skipped = multierr.Append(skipped, fmt.Errorf("section %s: %w", ref.Item.HREF, err))
			continue
		}
		// The chapter's start index is the index of its first token, so
		// record the mark before appending this section's tokens.
		if label, ok := findNavLabel(nav, ref.Item.HREF); ok {
			chapters = append(chapters, ChapterMark{Title: label, Start: len(tokens)})
		}
		tokens = append(tokens, section...)
	}

	if skipped != nil {
		log.Info("extraction finished with skipped sections",
			zap.Int("skipped", len(multierr.Errors(skipped))))
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyContent
	}

	title := strings.TrimSpace(book.Title)
	if title == "" {
		title = baseTitle(filename)
	}
	return &Book{
		Title:    title,
		Author:   strings.TrimSpace(book.Creator),
		Tokens:   tokens,
		Chapters: chapters,
	}, nil
}

// loadSection reads one spine item and returns its tokens.
func loadSection(item *epub.Item) ([]string, error) {
	r, err := item.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := extractHTMLText(string(data))
	if err != nil {
		return nil, err
	}
	return Normalize(text), nil
}

// Subtrees that never hold reading content.
var prunedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"svg":    true,
}

// extractHTMLText returns the concatenated text content of a section after
// removing scripts, styles, navigation landmarks, headers, footers, inline
// SVG and explicit table-of-contents blocks.
func extractHTMLText(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pruneNode(n) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out.WriteString(t)
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out.String(), nil
}

func pruneNode(n *html.Node) bool {
	if prunedTags[n.Data] {
		return true
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "epub:type", "role":
			if a.Val == "toc" || a.Val == "doc-toc" {
				return true
			}
		}
	}
	return false
}

// CoverImage returns the book's cover image bytes and media type, if the
// manifest declares one.
func CoverImage(filename string) ([]byte, string, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, "", fmt.Errorf("no rootfiles found in epub")
	}
	for _, item := range rc.Rootfiles[0].Manifest.Items {
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		if !strings.Contains(strings.ToLower(item.ID), "cover") &&
			!strings.Contains(strings.ToLower(item.HREF), "cover") {
			continue
		}
		r, err := item.Open()
		if err != nil {
			return nil, "", err
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", err
		}
		return data, item.MediaType, nil
	}
	return nil, "", fmt.Errorf("no cover image in manifest")
}

// Metadata reads title and author from an EPUB package without extracting
// content. Used by the library when cataloging.
func Metadata(filename string) (title, author string, err error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return "", "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return "", "", fmt.Errorf("no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]
	return strings.TrimSpace(book.Title), strings.TrimSpace(book.Creator), nil
}
