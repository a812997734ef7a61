package sqlgen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// Table describes one table and its columns.
type Table struct {
	Name    string
	Columns []Column
}

// Schema is the introspected database schema, formatted into the conversion
// prompt.
type Schema struct {
	Tables []Table
}

// IntrospectSchema reads table and column definitions from sqlite_master and
// PRAGMA table_info.
func IntrospectSchema(ctx context.Context, db *sql.DB) (*Schema, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schema := &Schema{}
	for _, name := range names {
		table, err := introspectTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

func introspectTable(ctx context.Context, db *sql.DB, name string) (Table, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return Table{}, fmt.Errorf("table info for %s: %w", name, err)
	}
	defer rows.Close()

	table := Table{Name: name}
	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return Table{}, err
		}
		table.Columns = append(table.Columns, Column{
			Name:       colName,
			Type:       colType,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		})
	}
	return table, rows.Err()
}

// Describe renders the schema for the conversion prompt.
func (s *Schema) Describe() string {
	var sb strings.Builder
	for _, table := range s.Tables {
		fmt.Fprintf(&sb, "Table %s:\n", table.Name)
		for _, col := range table.Columns {
			fmt.Fprintf(&sb, "  %s %s", col.Name, col.Type)
			if col.PrimaryKey {
				sb.WriteString(" PRIMARY KEY")
			}
			if col.NotNull {
				sb.WriteString(" NOT NULL")
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
