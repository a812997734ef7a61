package cypher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Schema describes the labels, relationship types, and sampled properties of
// a graph, formatted into the conversion prompt.
type Schema struct {
	Labels            []string
	RelationshipTypes []string
	// Properties maps a label to the property keys sampled from one node.
	Properties map[string][]string
}

// IntrospectSchema reads the graph schema through db.labels(),
// db.relationshipTypes(), and per-label property sampling.
func IntrospectSchema(ctx context.Context, driver neo4j.DriverWithContext, database string) (*Schema, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	schema := &Schema{Properties: make(map[string][]string)}

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		labels, err := collectStrings(ctx, tx, "CALL db.labels() YIELD label RETURN label", "label")
		if err != nil {
			return nil, fmt.Errorf("list labels: %w", err)
		}
		schema.Labels = labels

		relTypes, err := collectStrings(ctx, tx,
			"CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", "relationshipType")
		if err != nil {
			return nil, fmt.Errorf("list relationship types: %w", err)
		}
		schema.RelationshipTypes = relTypes

		for _, label := range labels {
			query := fmt.Sprintf("MATCH (n:`%s`) RETURN keys(n) AS keys LIMIT 1", label)
			result, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, fmt.Errorf("sample properties for %s: %w", label, err)
			}
			if result.Next(ctx) {
				if raw, ok := result.Record().Get("keys"); ok {
					if keys, ok := raw.([]any); ok {
						props := make([]string, 0, len(keys))
						for _, k := range keys {
							if s, ok := k.(string); ok {
								props = append(props, s)
							}
						}
						sort.Strings(props)
						schema.Properties[label] = props
					}
				}
			}
			if err := result.Err(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return schema, nil
}

func collectStrings(ctx context.Context, tx neo4j.ManagedTransaction, query, field string) ([]string, error) {
	result, err := tx.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var out []string
	for result.Next(ctx) {
		if raw, ok := result.Record().Get(field); ok {
			if s, ok := raw.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out, result.Err()
}

// Describe renders the schema for the conversion prompt.
func (s *Schema) Describe() string {
	var sb strings.Builder

	sb.WriteString("Node labels and properties:\n")
	for _, label := range s.Labels {
		props := s.Properties[label]
		if len(props) > 0 {
			fmt.Fprintf(&sb, "  (:%s {%s})\n", label, strings.Join(props, ", "))
		} else {
			fmt.Fprintf(&sb, "  (:%s)\n", label)
		}
	}

	sb.WriteString("Relationship types:\n")
	for _, rel := range s.RelationshipTypes {
		fmt.Fprintf(&sb, "  [:%s]\n", rel)
	}

	return sb.String()
}
