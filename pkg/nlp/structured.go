package nlp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StripCodeFence removes a surrounding markdown code fence from LLM output.
// The language tag after the opening fence ("json", "cypher", "sql") is dropped.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		// Drop a bare language tag on the fence line.
		if len(firstLine) <= 16 && !strings.ContainsAny(firstLine, " \t{}()") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeJSON parses LLM output into v, tolerating markdown fences and the
// malformed JSON smaller models tend to emit. Repair runs only after a direct
// unmarshal fails.
func DecodeJSON(content string, v any) error {
	cleaned := StripCodeFence(content)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return fmt.Errorf("repair llm json output: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("decode llm json output: %w", err)
	}
	return nil
}
