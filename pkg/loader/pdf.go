package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/yilane/rag-related/pkg/types"
)

// PDFLoader extracts plain text from a PDF file.
type PDFLoader struct {
	path string
}

// NewPDFLoader creates a loader for the given PDF path.
func NewPDFLoader(path string) *PDFLoader {
	return &PDFLoader{path: path}
}

// Load extracts the PDF text into a single document. Page count lands in the
// document metadata.
func (l *PDFLoader) Load(_ context.Context) ([]*types.Document, error) {
	f, reader, err := pdf.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", l.path, err)
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text %s: %w", l.path, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, fmt.Errorf("read pdf text %s: %w", l.path, err)
	}

	text := buf.String()
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyText, l.path)
	}

	return []*types.Document{{
		ID:        uuid.NewString(),
		Content:   text,
		Source:    l.path,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"format": "pdf",
			"pages":  reader.NumPage(),
		},
	}}, nil
}
