package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NavItem is one entry in the book's navigation tree.
type NavItem struct {
	Label    string
	HRef     string
	Children []NavItem
}

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// loadNavTree parses the NCX into the navigation tree. A missing or broken
// NCX is not fatal; the book simply has no chapter labels.
func loadNavTree(filename string, book *epub.Rootfile) ([]NavItem, error) {
	data, err := findAndReadNCX(filename, book)
	if err != nil {
		return nil, err
	}
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}
	return toNavItems(toc.NavMap.NavPoints), nil
}

func toNavItems(points []navPoint) []NavItem {
	items := make([]NavItem, 0, len(points))
	for _, np := range points {
		items = append(items, NavItem{
			Label:    strings.TrimSpace(np.Label.Text),
			HRef:     np.Content.Src,
			Children: toNavItems(np.Children),
		})
	}
	return items
}

// findNavLabel searches the navigation tree for an entry matching a spine
// section reference. Hrefs match by either-direction substring on their
// fragment-stripped base, since NCX sources and spine hrefs often differ in
// path prefix. Depth-first, first match wins.
func findNavLabel(items []NavItem, href string) (string, bool) {
	ref := stripFragment(href)
	if ref == "" {
		return "", false
	}
	for _, item := range items {
		h := stripFragment(item.HRef)
		if h != "" && (strings.Contains(h, ref) || strings.Contains(ref, h)) {
			return item.Label, true
		}
		if label, ok := findNavLabel(item.Children, href); ok {
			return label, true
		}
	}
	return "", false
}

func stripFragment(href string) string {
	if i := strings.Index(href, "#"); i != -1 {
		href = href[:i]
	}
	if href == "" {
		return ""
	}
	return path.Base(href)
}

// findAndReadNCX locates the NCX archive member, via the manifest media
// type first and a name suffix scan as fallback.
func findAndReadNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}

	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}
