package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantFilter(t *testing.T) {
	filter, rest := qdrantFilter(map[string]interface{}{
		"source":  "notes/vector.md",
		"page":    3,
		"archive": false,
		"ratio":   0.5, // no match condition on the wire
	})

	require.NotNil(t, filter)
	assert.Len(t, filter.Must, 3)
	assert.Equal(t, map[string]interface{}{"ratio": 0.5}, rest)

	byKey := map[string]*qdrant.Match{}
	for _, cond := range filter.Must {
		field := cond.GetField()
		require.NotNil(t, field)
		byKey[field.Key] = field.Match
	}
	assert.Equal(t, "notes/vector.md", byKey["source"].GetKeyword())
	assert.Equal(t, int64(3), byKey["page"].GetInteger())
	assert.False(t, byKey["archive"].GetBoolean())
}

func TestQdrantFilterEmpty(t *testing.T) {
	filter, rest := qdrantFilter(nil)
	assert.Nil(t, filter)
	assert.Nil(t, rest)
}

func TestQdrantFilterOnlyUnsupported(t *testing.T) {
	filter, rest := qdrantFilter(map[string]interface{}{
		"tags": []string{"a", "b"},
	})
	assert.Nil(t, filter)
	assert.Len(t, rest, 1)
}

func TestQdrantValue(t *testing.T) {
	assert.Equal(t, "x", qdrantValue("x").GetStringValue())
	assert.Equal(t, int64(7), qdrantValue(7).GetIntegerValue())
	assert.Equal(t, int64(8), qdrantValue(int64(8)).GetIntegerValue())
	assert.Equal(t, 1.5, qdrantValue(1.5).GetDoubleValue())
	assert.True(t, qdrantValue(true).GetBoolValue())
	assert.Nil(t, qdrantValue([]string{"a"}))
}
