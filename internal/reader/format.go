package reader

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format extracts a Book from one file format.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string, log *zap.Logger) (*Book, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Open extracts a book from a file, using a registered format or the plain
// text fallback.
func Open(filename string, log *zap.Logger) (*Book, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Extract(filename, log)
			}
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewBook(baseTitle(filename), Normalize(string(data)))
}

// baseTitle derives a display title from a file name.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
