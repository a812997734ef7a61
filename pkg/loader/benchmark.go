package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// BenchmarkResult records one parser run over one input.
type BenchmarkResult struct {
	Parser  string
	Source  string
	Elapsed time.Duration
	Chars   int
	Err     error
}

// NamedLoader pairs a loader with a parser label for benchmarking.
type NamedLoader struct {
	Name   string
	Loader Loader
}

// Benchmark runs each loader and records timing and extracted size. Failures
// are recorded, not fatal, so one bad parser does not abort the comparison.
func Benchmark(ctx context.Context, loaders []NamedLoader) []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(loaders))

	for _, nl := range loaders {
		start := time.Now()
		docs, err := nl.Loader.Load(ctx)
		elapsed := time.Since(start)

		result := BenchmarkResult{Parser: nl.Name, Elapsed: elapsed, Err: err}
		if err == nil && len(docs) > 0 {
			result.Source = docs[0].Source
			for _, d := range docs {
				result.Chars += len(d.Content)
			}
		}
		results = append(results, result)
	}

	return results
}

// WriteBenchmarkCSV writes results as a CSV table.
func WriteBenchmarkCSV(w io.Writer, results []BenchmarkResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"parser", "source", "elapsed_ms", "chars", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		record := []string{
			r.Parser,
			r.Source,
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
			strconv.Itoa(r.Chars),
			errMsg,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatBenchmarkTable renders results as an aligned text table.
func FormatBenchmarkTable(results []BenchmarkResult) string {
	out := fmt.Sprintf("%-12s %-10s %10s %8s\n", "PARSER", "STATUS", "ELAPSED", "CHARS")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed"
		}
		out += fmt.Sprintf("%-12s %-10s %10s %8d\n", r.Parser, status, r.Elapsed.Round(time.Millisecond), r.Chars)
	}
	return out
}
