package cypher

import (
	"errors"
	"fmt"
	"strings"
)

// Guard errors
var (
	ErrEmptyStatement = errors.New("empty cypher statement")
	ErrWriteClause    = errors.New("statement contains a write clause")
	ErrUnbalanced     = errors.New("statement has unbalanced brackets")
)

// forbiddenClauses are write or administrative operations a generated query
// must never contain. Matched as whole words, case-insensitive.
var forbiddenClauses = []string{
	"CREATE", "DELETE", "DETACH", "MERGE", "SET", "REMOVE", "DROP",
	"FOREACH", "LOAD CSV",
	"CALL DBMS", "CALL APOC", "CALL DB.INDEX",
}

// ValidateReadOnly rejects statements with write clauses or unbalanced
// brackets. It runs before any EXPLAIN round-trip so obviously unsafe model
// output never reaches the database.
func ValidateReadOnly(statement string) error {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return ErrEmptyStatement
	}

	upper := strings.ToUpper(stripStringLiterals(statement))
	for _, clause := range forbiddenClauses {
		if containsWord(upper, clause) {
			return fmt.Errorf("%w: %s", ErrWriteClause, clause)
		}
	}

	if !balanced(statement) {
		return ErrUnbalanced
	}
	return nil
}

// containsWord reports whether clause appears as whole words in s.
func containsWord(s, clause string) bool {
	idx := 0
	for {
		pos := strings.Index(s[idx:], clause)
		if pos < 0 {
			return false
		}
		pos += idx

		beforeOK := pos == 0 || !isWordChar(s[pos-1])
		end := pos + len(clause)
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
// the clause scan.
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
		if c == '\'' || c == '"' || c == '`' {
			quote = c
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func balanced(s string) bool {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}

	s = stripStringLiterals(s)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
