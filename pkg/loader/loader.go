// Package loader reads source documents from files, directories, PDFs, and
// web pages, and writes extracted text back out as markdown.
package loader

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/yilane/rag-related/pkg/types"
)

// Loader produces documents from some source.
type Loader interface {
	// Load reads and returns the documents.
	Load(ctx context.Context) ([]*types.Document, error)
}

// Loader errors
var (
	ErrNoDocuments = errors.New("no documents loaded")
	ErrEmptyText   = errors.New("no text extracted")
)

// OutputFilename derives a markdown output name from a source path or URL:
// the path stem for files, the last path segment for URLs, with a fallback
// for bare hosts.
func OutputFilename(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if u, err := url.Parse(source); err == nil {
			segment := strings.Trim(u.Path, "/")
			if idx := strings.LastIndexByte(segment, '/'); idx >= 0 {
				segment = segment[idx+1:]
			}
			if segment == "" {
				segment = strings.ReplaceAll(u.Host, ".", "_")
			}
			return stripExtension(segment) + ".md"
		}
	}

	base := filepath.Base(source)
	return stripExtension(base) + ".md"
}

func stripExtension(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
