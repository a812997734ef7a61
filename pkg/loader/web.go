package loader

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/yilane/rag-related/pkg/types"
)

// WebLoader fetches a page and extracts its readable text.
type WebLoader struct {
	url    string
	client *http.Client
}

// NewWebLoader creates a loader for the given URL.
func NewWebLoader(url string) *WebLoader {
	return &WebLoader{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches the page and strips scripts, styles, and navigation chrome.
func (l *WebLoader) Load(ctx context.Context) ([]*types.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", l.url, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", l.url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.url, err)
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := normalizeWhitespace(doc.Find("body").Text())
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyText, l.url)
	}

	return []*types.Document{{
		ID:        uuid.NewString(),
		Content:   text,
		Source:    l.url,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"format": "html",
			"title":  title,
		},
	}}, nil
}

// normalizeWhitespace collapses runs of blank lines and trims each line.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
