package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yilane/rag-related/pkg/types"
)

// WriteMarkdown writes a document's extracted text to outDir as markdown,
// naming the file from the document source. Returns the written path.
func WriteMarkdown(doc *types.Document, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := OutputFilename(doc.Source)
	path := filepath.Join(outDir, name)

	var sb strings.Builder
	if title, ok := doc.Metadata["title"].(string); ok && title != "" {
		sb.WriteString("# " + title + "\n\n")
	}
	sb.WriteString(doc.Content)
	if !strings.HasSuffix(doc.Content, "\n") {
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
