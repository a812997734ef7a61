package cypher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/types"
)

func TestValidateReadOnly(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		wantErr   error
	}{
		{
			name:      "simple match",
			statement: "MATCH (d:Disease {name: '高血压'})-[:HAS_SYMPTOM]->(s:Symptom) RETURN s.name",
		},
		{
			name:      "with order and limit",
			statement: "MATCH (n:Drug) RETURN n.name ORDER BY n.name LIMIT 10",
		},
		{
			name:      "empty",
			statement: "   ",
			wantErr:   ErrEmptyStatement,
		},
		{
			name:      "create",
			statement: "CREATE (n:Disease {name: 'x'})",
			wantErr:   ErrWriteClause,
		},
		{
			name:      "detach delete",
			statement: "MATCH (n) DETACH DELETE n",
			wantErr:   ErrWriteClause,
		},
		{
			name:      "merge",
			statement: "MERGE (n:Disease {name: 'x'}) RETURN n",
			wantErr:   ErrWriteClause,
		},
		{
			name:      "lowercase set",
			statement: "match (n) set n.x = 1 return n",
			wantErr:   ErrWriteClause,
		},
		{
			name:      "load csv",
			statement: "LOAD CSV FROM 'file:///x.csv' AS row RETURN row",
			wantErr:   ErrWriteClause,
		},
		{
			name:      "apoc call",
			statement: "CALL apoc.periodic.iterate('x', 'y', {})",
			wantErr:   ErrWriteClause,
		},
		{
			name:      "keyword inside string literal is fine",
			statement: "MATCH (n:Doc) WHERE n.title = 'How to CREATE a graph' RETURN n",
		},
		{
			name:      "keyword inside identifier is fine",
			statement: "MATCH (n) RETURN n.created_at, n.preset",
		},
		{
			name:      "unbalanced",
			statement: "MATCH (n:Disease RETURN n",
			wantErr:   ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReadOnly(tt.statement)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchemaDescribe(t *testing.T) {
	schema := &Schema{
		Labels:            []string{"Disease", "Symptom"},
		RelationshipTypes: []string{"HAS_SYMPTOM"},
		Properties: map[string][]string{
			"Disease": {"name"},
		},
	}

	desc := schema.Describe()
	assert.Contains(t, desc, "(:Disease {name})")
	assert.Contains(t, desc, "(:Symptom)")
	assert.Contains(t, desc, "[:HAS_SYMPTOM]")
}

func testSchema() *Schema {
	return &Schema{
		Labels:            []string{"Disease", "Symptom", "Drug"},
		RelationshipTypes: []string{"HAS_SYMPTOM", "TREATS"},
		Properties: map[string][]string{
			"Disease": {"name"},
			"Symptom": {"name"},
			"Drug":    {"name"},
		},
	}
}

func TestConvert(t *testing.T) {
	llm := &nlp.MockClient{Responses: []string{
		"MATCH (d:Disease {name: '高血压'})-[:HAS_SYMPTOM]->(s:Symptom) RETURN s.name AS symptom",
	}}
	conv := NewConverter(llm, testSchema(), nil)

	statement, err := conv.Convert(context.Background(), "高血压有哪些症状？")
	require.NoError(t, err)
	assert.Contains(t, statement, "MATCH")
	assert.Contains(t, statement, "HAS_SYMPTOM")

	// The schema went into the prompt.
	require.Len(t, llm.Calls, 1)
	prompt := llm.Calls[0][len(llm.Calls[0])-1].Content
	assert.Contains(t, prompt, "(:Disease {name})")
	assert.Contains(t, prompt, "高血压有哪些症状？")
}

func TestConvertStripsCodeFence(t *testing.T) {
	llm := &nlp.MockClient{Responses: []string{
		"```cypher\nMATCH (n:Drug) RETURN n.name\n```",
	}}
	conv := NewConverter(llm, testSchema(), nil)

	statement, err := conv.Convert(context.Background(), "list all drugs")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Drug) RETURN n.name", statement)
}

func TestConvertRejectsWriteStatement(t *testing.T) {
	llm := &nlp.MockClient{Responses: []string{
		"CREATE (n:Disease {name: 'made up'})",
	}}
	conv := NewConverter(llm, testSchema(), nil)

	_, err := conv.Convert(context.Background(), "add a disease")
	assert.ErrorIs(t, err, ErrWriteClause)
}

func TestConvertEmptyQuestion(t *testing.T) {
	conv := NewConverter(&nlp.MockClient{}, testSchema(), nil)
	_, err := conv.Convert(context.Background(), "  ")
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestFormatRecords(t *testing.T) {
	out := FormatRecords([]map[string]any{
		{"symptom": "头痛", "count": 3},
		{"symptom": "眩晕", "count": 1},
	})
	assert.Contains(t, out, "count\tsymptom")
	assert.Contains(t, out, "3\t头痛")
	assert.Contains(t, out, "1\t眩晕")

	assert.Equal(t, "(no results)", FormatRecords(nil))
}
