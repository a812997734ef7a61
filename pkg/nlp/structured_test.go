package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no fence",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "cypher fence",
			in:   "```cypher\nMATCH (n) RETURN n\n```",
			want: "MATCH (n) RETURN n",
		},
		{
			name: "bare fence",
			in:   "```\nSELECT 1\n```",
			want: "SELECT 1",
		},
		{
			name: "fence with surrounding whitespace",
			in:   "  ```sql\nSELECT name FROM users\n```  ",
			want: "SELECT name FROM users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type filter struct {
		Query string `json:"query"`
		Year  int    `json:"year"`
	}

	t.Run("clean json", func(t *testing.T) {
		var f filter
		require.NoError(t, DecodeJSON(`{"query": "rag", "year": 2023}`, &f))
		assert.Equal(t, "rag", f.Query)
		assert.Equal(t, 2023, f.Year)
	})

	t.Run("fenced json", func(t *testing.T) {
		var f filter
		require.NoError(t, DecodeJSON("```json\n{\"query\": \"rag\"}\n```", &f))
		assert.Equal(t, "rag", f.Query)
	})

	t.Run("malformed json is repaired", func(t *testing.T) {
		var f filter
		// trailing comma and single quotes, typical small-model output
		require.NoError(t, DecodeJSON(`{'query': 'rag', 'year': 2023,}`, &f))
		assert.Equal(t, "rag", f.Query)
		assert.Equal(t, 2023, f.Year)
	})

	t.Run("unrecoverable input", func(t *testing.T) {
		var f filter
		assert.Error(t, DecodeJSON("not json at all {{{", &f))
	})
}
