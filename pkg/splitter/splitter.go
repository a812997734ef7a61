// Package splitter breaks documents into retrieval-sized chunks.
//
// Splitters differ in how they pick boundaries: fixed character windows,
// recursive separator priority, sentence windows, and embedding-distance
// (semantic) breakpoints.
package splitter

import (
	"fmt"

	"github.com/yilane/rag-related/pkg/types"
)

// Splitter converts raw text into chunks.
type Splitter interface {
	// SplitText splits text into chunk strings.
	SplitText(text string) []string
}

// SplitDocuments runs a splitter over documents and materializes chunks with
// positional metadata. Chunk IDs derive from the parent document ID.
func SplitDocuments(s Splitter, docs []*types.Document) []*types.Chunk {
	chunks := make([]*types.Chunk, 0)

	for _, doc := range docs {
		pieces := s.SplitText(doc.Content)
		for i, piece := range pieces {
			metadata := make(map[string]interface{}, len(doc.Metadata)+2)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata["source"] = doc.Source
			metadata["chunk_total"] = len(pieces)

			chunks = append(chunks, &types.Chunk{
				ID:         fmt.Sprintf("%s_chunk_%d", doc.ID, i),
				DocumentID: doc.ID,
				Content:    piece,
				Index:      i,
				Metadata:   metadata,
			})
		}
	}

	return chunks
}

// runeLen measures text length in runes so CJK text is sized like the
// character counts users configure.
func runeLen(s string) int {
	return len([]rune(s))
}
