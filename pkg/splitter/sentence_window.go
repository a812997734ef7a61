package splitter

import (
	"fmt"
	"strings"

	"github.com/yilane/rag-related/pkg/types"
)

// SentenceWindowSplitter emits one chunk per sentence and records a window of
// neighboring sentences in the chunk metadata. Retrieval matches on the
// focused sentence; generation swaps in the wider window for context.
type SentenceWindowSplitter struct {
	windowSize int
}

// Metadata keys written by the sentence-window splitter.
const (
	WindowMetadataKey   = "window"
	SentenceMetadataKey = "original_sentence"
)

// NewSentenceWindowSplitter creates a splitter keeping windowSize sentences on
// each side of the focused sentence.
func NewSentenceWindowSplitter(windowSize int) *SentenceWindowSplitter {
	if windowSize < 1 {
		windowSize = 3
	}
	return &SentenceWindowSplitter{windowSize: windowSize}
}

// SplitText splits text into sentences.
func (s *SentenceWindowSplitter) SplitText(text string) []string {
	return SplitSentences(text)
}

// SplitDocuments emits sentence chunks with window metadata.
func (s *SentenceWindowSplitter) SplitDocuments(docs []*types.Document) []*types.Chunk {
	var chunks []*types.Chunk

	for _, doc := range docs {
		sentences := SplitSentences(doc.Content)
		for i, sentence := range sentences {
			lo := i - s.windowSize
			if lo < 0 {
				lo = 0
			}
			hi := i + s.windowSize + 1
			if hi > len(sentences) {
				hi = len(sentences)
			}

			metadata := make(map[string]interface{}, len(doc.Metadata)+3)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata["source"] = doc.Source
			metadata[WindowMetadataKey] = strings.Join(sentences[lo:hi], "")
			metadata[SentenceMetadataKey] = sentence

			chunks = append(chunks, &types.Chunk{
				ID:         fmt.Sprintf("%s_sent_%d", doc.ID, i),
				DocumentID: doc.ID,
				Content:    sentence,
				Index:      i,
				Metadata:   metadata,
			})
		}
	}

	return chunks
}

// SplitSentences splits prose into sentences on CJK and latin sentence enders,
// keeping the terminator attached to its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if isSentenceEnd(r) {
			// Attach a closing quote that directly follows the terminator.
			if i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '”' || runes[i+1] == '』') {
				current.WriteRune(runes[i+1])
				i++
			}
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?', '；', ';':
		return true
	}
	return false
}
