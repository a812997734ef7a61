package types

import (
	"encoding/json"
	"testing"
)

func TestDocumentValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: Document{
				Content: "some text",
				Source:  "notes/intro.md",
			},
			wantErr: nil,
		},
		{
			name: "empty content",
			doc: Document{
				Content: "",
				Source:  "notes/intro.md",
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "empty source",
			doc: Document{
				Content: "some text",
				Source:  "",
			},
			wantErr: ErrEmptySource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if err != tt.wantErr {
				t.Errorf("Document.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentValidateForCreate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{
			name: "valid document for create",
			doc: Document{
				ID:      "doc-123",
				Content: "some text",
				Source:  "notes/intro.md",
			},
			wantErr: nil,
		},
		{
			name: "empty id",
			doc: Document{
				ID:      "",
				Content: "some text",
				Source:  "notes/intro.md",
			},
			wantErr: ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.ValidateForCreate()
			if err != tt.wantErr {
				t.Errorf("Document.ValidateForCreate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkValidation(t *testing.T) {
	tests := []struct {
		name    string
		chunk   Chunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   Chunk{Content: "chunk text"},
			wantErr: nil,
		},
		{
			name:    "empty content",
			chunk:   Chunk{Content: ""},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chunk.Validate()
			if err != tt.wantErr {
				t.Errorf("Chunk.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkValidateForCreate(t *testing.T) {
	chunk := Chunk{Content: "chunk text"}
	if err := chunk.ValidateForCreate(); err != ErrEmptyID {
		t.Errorf("Chunk.ValidateForCreate() error = %v, want %v", err, ErrEmptyID)
	}
	chunk.ID = "chunk-1"
	if err := chunk.ValidateForCreate(); err != nil {
		t.Errorf("Chunk.ValidateForCreate() error = %v, want nil", err)
	}
}

func TestSearchConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  SearchConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  SearchConfig{TopK: 10},
			wantErr: nil,
		},
		{
			name:    "zero top_k (valid)",
			config:  SearchConfig{TopK: 0},
			wantErr: nil,
		},
		{
			name:    "negative top_k",
			config:  SearchConfig{TopK: -1},
			wantErr: ErrInvalidTopK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if err != tt.wantErr {
				t.Errorf("SearchConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchConfigWithDefaults(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		var config *SearchConfig
		result := config.WithDefaults()
		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.TopK != 5 {
			t.Errorf("expected default TopK=5, got %d", result.TopK)
		}
	})

	t.Run("zero values get defaults", func(t *testing.T) {
		config := &SearchConfig{TopK: 0, MinScore: 0.5}
		result := config.WithDefaults()
		if result.TopK != 5 {
			t.Errorf("expected default TopK=5, got %d", result.TopK)
		}
		if result.MinScore != 0.5 {
			t.Errorf("expected MinScore=0.5 to be preserved, got %f", result.MinScore)
		}
	})

	t.Run("non-zero values preserved", func(t *testing.T) {
		config := &SearchConfig{TopK: 20}
		result := config.WithDefaults()
		if result.TopK != 20 {
			t.Errorf("expected TopK=20 to be preserved, got %d", result.TopK)
		}
	})
}

func TestWeightedQueryValidation(t *testing.T) {
	tests := []struct {
		name    string
		query   WeightedQuery
		wantErr error
	}{
		{
			name:    "valid",
			query:   WeightedQuery{Query: "高血压的症状", Weight: 0.8},
			wantErr: nil,
		},
		{
			name:    "empty query",
			query:   WeightedQuery{Query: "", Weight: 1.0},
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "zero weight",
			query:   WeightedQuery{Query: "q", Weight: 0},
			wantErr: ErrInvalidWeight,
		},
		{
			name:    "weight above one",
			query:   WeightedQuery{Query: "q", Weight: 1.5},
			wantErr: ErrInvalidWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if err != tt.wantErr {
				t.Errorf("WeightedQuery.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkJSONRoundtrip(t *testing.T) {
	original := &Chunk{
		ID:         "chunk-1",
		DocumentID: "doc-1",
		Content:    "RAG combines retrieval with generation.",
		Index:      3,
		Embedding:  []float32{0.1, 0.2, 0.3},
		Metadata: map[string]interface{}{
			"source": "notes/rag.md",
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded Chunk
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID mismatch: got %s, want %s", decoded.ID, original.ID)
	}
	if decoded.Content != original.Content {
		t.Errorf("Content mismatch: got %s, want %s", decoded.Content, original.Content)
	}
	if decoded.Index != original.Index {
		t.Errorf("Index mismatch: got %d, want %d", decoded.Index, original.Index)
	}
	if len(decoded.Embedding) != len(original.Embedding) {
		t.Errorf("Embedding length mismatch: got %d, want %d", len(decoded.Embedding), len(original.Embedding))
	}
}

func TestMessageHelpers(t *testing.T) {
	if m := SystemMessage("s"); m.Role != RoleSystem || m.Content != "s" {
		t.Errorf("SystemMessage() = %+v", m)
	}
	if m := UserMessage("u"); m.Role != RoleUser || m.Content != "u" {
		t.Errorf("UserMessage() = %+v", m)
	}
	if m := AssistantMessage("a"); m.Role != RoleAssistant || m.Content != "a" {
		t.Errorf("AssistantMessage() = %+v", m)
	}
}
