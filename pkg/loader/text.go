package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yilane/rag-related/pkg/types"
)

// TextLoader loads a single plain-text or markdown file.
type TextLoader struct {
	path string
}

// NewTextLoader creates a loader for the given file path.
func NewTextLoader(path string) *TextLoader {
	return &TextLoader{path: path}
}

// Load reads the file into a single document.
func (l *TextLoader) Load(_ context.Context) ([]*types.Document, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	return []*types.Document{{
		ID:        uuid.NewString(),
		Content:   string(data),
		Source:    l.path,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"format": strings.TrimPrefix(filepath.Ext(l.path), "."),
		},
	}}, nil
}

// DirectoryLoader loads every matching file under a directory.
type DirectoryLoader struct {
	dir        string
	extensions map[string]struct{}
	recursive  bool
}

// NewDirectoryLoader creates a loader over dir. Extensions filter which files
// load ("md", "txt", "pdf"); empty means text formats only.
func NewDirectoryLoader(dir string, extensions []string, recursive bool) *DirectoryLoader {
	if len(extensions) == 0 {
		extensions = []string{"md", "txt"}
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &DirectoryLoader{dir: dir, extensions: set, recursive: recursive}
}

// Load walks the directory and loads every matching file. Files with other
// extensions are skipped, not errors.
func (l *DirectoryLoader) Load(ctx context.Context) ([]*types.Document, error) {
	var docs []*types.Document

	err := filepath.WalkDir(l.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !l.recursive && path != l.dir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := l.extensions[ext]; !ok {
			return nil
		}

		var loaded []*types.Document
		if ext == "pdf" {
			loaded, err = NewPDFLoader(path).Load(ctx)
		} else {
			loaded, err = NewTextLoader(path).Load(ctx)
		}
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.dir, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, l.dir)
	}
	return docs, nil
}
