package sqlgen

import (
	"errors"
	"fmt"
	"strings"
)

// Guard errors
var (
	ErrEmptyStatement    = errors.New("empty sql statement")
	ErrNotSelect         = errors.New("statement is not a select")
	ErrForbiddenKeyword  = errors.New("statement contains a forbidden keyword")
	ErrMultipleStatement = errors.New("multiple statements are not allowed")
)

// forbiddenKeywords are write or administrative operations a generated
// statement must never contain. Matched as whole words, case-insensitive.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "REPLACE",
	"ATTACH", "DETACH", "PRAGMA", "VACUUM", "REINDEX", "TRUNCATE",
}

// ValidateSelect rejects anything but a single SELECT (or WITH ... SELECT)
// statement. It runs before any EXPLAIN round-trip so obviously unsafe model
// output never reaches the database.
func ValidateSelect(statement string) error {
	statement = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(statement), ";"))
	if statement == "" {
		return ErrEmptyStatement
	}

	stripped := stripStringLiterals(statement)
	if strings.Contains(stripped, ";") {
		return ErrMultipleStatement
	}

	upper := strings.ToUpper(stripped)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ErrNotSelect
	}

	for _, kw := range forbiddenKeywords {
		if containsWord(upper, kw) {
			return fmt.Errorf("%w: %s", ErrForbiddenKeyword, kw)
		}
	}
	return nil
}

// containsWord reports whether kw appears as a whole word in s.
func containsWord(s, kw string) bool {
	idx := 0
	for {
		pos := strings.Index(s[idx:], kw)
		if pos < 0 {
			return false
		}
		pos += idx

		beforeOK := pos == 0 || !isWordChar(s[pos-1])
		end := pos + len(kw)
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = pos + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

// stripStringLiterals blanks out quoted strings so literal text cannot trip
// the keyword scan. SQLite escapes a quote inside a string by doubling it,
// which this handles naturally as two adjacent strings.
func stripStringLiterals(s string) string {
	var sb strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			sb.WriteByte(' ')
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
