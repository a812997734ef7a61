// Package icd10 implements the ICD-10 disease search demo: loading the code
// table from CSV, building a vector index over disease names, and serving
// NER-assisted weighted search.
package icd10

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one row of the ICD-10 code table.
type Record struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	ChapterCode string `json:"chapter_code,omitempty"`
	ChapterName string `json:"chapter_name,omitempty"`
	SectionCode string `json:"section_code,omitempty"`
	SectionName string `json:"section_name,omitempty"`
}

// CSV column headers in the source table.
const (
	colCode        = "疾病编码"
	colName        = "疾病名称"
	colChapterCode = "章编码"
	colChapterName = "章名称"
	colSectionCode = "节编码"
	colSectionName = "节名称"
)

// ErrMissingColumns indicates the CSV lacks the required code/name headers.
var ErrMissingColumns = errors.New("csv is missing required columns")

// LoadCSV reads the ICD-10 table. Rows missing a code or name are dropped and
// duplicate codes keep the first occurrence.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses ICD-10 records from a reader.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	codeIdx, okCode := cols[colCode]
	nameIdx, okName := cols[colName]
	if !okCode || !okName {
		return nil, fmt.Errorf("%w: need %s and %s", ErrMissingColumns, colCode, colName)
	}

	field := func(row []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []Record
	seen := make(map[string]struct{})

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		if codeIdx >= len(row) || nameIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		name := strings.TrimSpace(row[nameIdx])
		if code == "" || name == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		records = append(records, Record{
			Code:        code,
			Name:        name,
			ChapterCode: field(row, colChapterCode),
			ChapterName: field(row, colChapterName),
			SectionCode: field(row, colSectionCode),
			SectionName: field(row, colSectionName),
		})
	}

	return records, nil
}
