// Package sqlgen converts natural-language questions into read-only SQL
// against a SQLite database, validates them, and runs them.
package sqlgen

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/types"
)

const convertPrompt = `You are an expert SQLite developer. Convert the user's question into a
single SELECT statement.

Database schema:
%s

Rules:
- Use only SELECT. Never write to the database.
- Use table and column names exactly as they appear in the schema.
- Prefer explicit column lists over SELECT *.
- Return only the SQL statement, with no explanation and no code fences.

Question: %s
SQL:`

// Converter turns questions into validated SELECT statements with an LLM.
type Converter struct {
	llm    nlp.Client
	schema *Schema
	logger *slog.Logger
}

// NewConverter creates a converter over a previously introspected schema.
func NewConverter(llm nlp.Client, schema *Schema, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{llm: llm, schema: schema, logger: logger}
}

// Convert generates a SELECT statement for the question and validates it
// with the read-only guard. The statement is not executed.
func (c *Converter) Convert(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", types.ErrEmptyQuery
	}

	resp, err := c.llm.Chat(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(convertPrompt, c.schema.Describe(), question)),
	})
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	statement := strings.TrimSpace(nlp.StripCodeFence(resp.Content))
	statement = strings.TrimPrefix(statement, "SQL:")
	statement = strings.TrimSpace(statement)

	if err := ValidateSelect(statement); err != nil {
		return "", fmt.Errorf("generated statement rejected: %w", err)
	}

	c.logger.Debug("converted question to sql", "question", question, "sql", statement)
	return statement, nil
}

// QueryResult holds a converted statement and the rows it returned.
type QueryResult struct {
	Question string
	SQL      string
	Columns  []string
	Rows     [][]any
}

// Service combines conversion and execution against one database handle.
type Service struct {
	converter *Converter
	db        *sql.DB
	logger    *slog.Logger
}

// NewService creates a text-to-sql service.
func NewService(converter *Converter, db *sql.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{converter: converter, db: db, logger: logger}
}

// Validate round-trips the statement through EXPLAIN so SQLite checks syntax
// and referenced objects without executing it.
func (s *Service) Validate(ctx context.Context, statement string) error {
	rows, err := s.db.QueryContext(ctx, "EXPLAIN "+statement)
	if err != nil {
		return fmt.Errorf("explain %q: %w", statement, err)
	}
	return rows.Close()
}

// Run executes a validated SELECT and collects the rows.
func (s *Service) Run(ctx context.Context, statement string) (*QueryResult, error) {
	if err := ValidateSelect(statement); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("run sql: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{SQL: statement, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// Query converts a question, validates the statement server-side, runs it,
// and returns the rows.
func (s *Service) Query(ctx context.Context, question string) (*QueryResult, error) {
	statement, err := s.converter.Convert(ctx, question)
	if err != nil {
		return nil, err
	}

	if err := s.Validate(ctx, statement); err != nil {
		return nil, err
	}

	result, err := s.Run(ctx, statement)
	if err != nil {
		return nil, err
	}
	result.Question = question
	return result, nil
}

// Format renders the result as aligned text, header first.
func (r *QueryResult) Format() string {
	if len(r.Rows) == 0 {
		return "(no results)"
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(r.Columns, "\t"))
	sb.WriteByte('\n')
	for _, row := range r.Rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = fmt.Sprintf("%v", v)
		}
		sb.WriteString(strings.Join(values, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}
