// Package cypher converts natural-language questions into read-only Cypher
// queries, validates them, and runs them against Neo4j.
package cypher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/types"
)

const convertPrompt = `You are an expert Neo4j developer. Convert the user's question into a
single read-only Cypher query.

Graph schema:
%s

Rules:
- Use only MATCH, OPTIONAL MATCH, WHERE, WITH, RETURN, ORDER BY, and LIMIT.
- Never write to the database.
- Match node properties exactly as they appear in the schema.
- Return only the Cypher statement, with no explanation and no code fences.

Examples:
Question: 高血压有哪些症状？
Cypher: MATCH (d:Disease {name: '高血压'})-[:HAS_SYMPTOM]->(s:Symptom) RETURN s.name AS symptom

Question: 哪些药物可以治疗糖尿病？
Cypher: MATCH (dr:Drug)-[:TREATS]->(d:Disease {name: '糖尿病'}) RETURN dr.name AS drug

Question: %s
Cypher:`

// Converter turns questions into validated Cypher statements with an LLM.
// Generation is independent of execution so it can run without a live
// database.
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

// Convert generates a Cypher statement for the question and validates it
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
		return "", fmt.Errorf("generate cypher: %w", err)
	}

	statement := strings.TrimSpace(nlp.StripCodeFence(resp.Content))
	statement = strings.TrimPrefix(statement, "Cypher:")
	statement = strings.TrimSpace(statement)

	if err := ValidateReadOnly(statement); err != nil {
		return "", fmt.Errorf("generated statement rejected: %w", err)
	}

	c.logger.Debug("converted question to cypher", "question", question, "cypher", statement)
	return statement, nil
}

// QueryResult holds a converted statement and the records it returned.
type QueryResult struct {
	Question string
	Cypher   string
	Records  []map[string]any
}

// Runner executes validated statements against Neo4j.
type Runner struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewRunner creates a runner bound to one database.
func NewRunner(driver neo4j.DriverWithContext, database string) *Runner {
	return &Runner{driver: driver, database: database}
}

// Validate round-trips the statement through EXPLAIN so the server checks
// syntax and semantics without executing anything.
func (r *Runner) Validate(ctx context.Context, statement string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, "EXPLAIN "+statement, nil)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("explain %q: %w", statement, err)
	}
	return nil
}

// Run executes a read-only statement and collects the records.
func (r *Runner) Run(ctx context.Context, statement string) ([]map[string]any, error) {
	if err := ValidateReadOnly(statement); err != nil {
		return nil, err
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, statement, nil)
		if err != nil {
			return nil, err
		}

		var rows []map[string]any
		for result.Next(ctx) {
			rows = append(rows, result.Record().AsMap())
		}
		return rows, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("run cypher: %w", err)
	}
	return records.([]map[string]any), nil
}

// Service combines conversion and execution.
type Service struct {
	converter *Converter
	runner    *Runner
	logger    *slog.Logger
}

// NewService creates a text-to-cypher service.
func NewService(converter *Converter, runner *Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{converter: converter, runner: runner, logger: logger}
}

// Query converts a question, validates the statement server-side, runs it,
// and returns the records.
func (s *Service) Query(ctx context.Context, question string) (*QueryResult, error) {
	statement, err := s.converter.Convert(ctx, question)
	if err != nil {
		return nil, err
	}

	if err := s.runner.Validate(ctx, statement); err != nil {
		return nil, err
	}

	records, err := s.runner.Run(ctx, statement)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Question: question, Cypher: statement, Records: records}, nil
}

// QueryAll runs a batch of questions, skipping the ones that fail. Errors
// are logged, not returned, so one bad conversion does not stop the batch.
func (s *Service) QueryAll(ctx context.Context, questions []string) []*QueryResult {
	results := make([]*QueryResult, 0, len(questions))
	for _, q := range questions {
		result, err := s.Query(ctx, q)
		if err != nil {
			s.logger.Warn("batch question failed", "question", q, "error", err)
			continue
		}
		results = append(results, result)
	}
	return results
}

// FormatRecords renders query records as aligned text, one record per line.
// Keys are sorted so output is stable.
func FormatRecords(records []map[string]any) string {
	if len(records) == 0 {
		return "(no results)"
	}

	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(strings.Join(keys, "\t"))
	sb.WriteByte('\n')
	for _, record := range records {
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = fmt.Sprintf("%v", record[k])
		}
		sb.WriteString(strings.Join(values, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}
