// Package telemetry records retrieval and generation events as Parquet
// files for offline analysis.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryRecord is one retrieval or generation event.
type QueryRecord struct {
	ID           string    `parquet:"id"`
	Timestamp    time.Time `parquet:"timestamp"`
	Operation    string    `parquet:"operation"`
	Query        string    `parquet:"query"`
	Retriever    string    `parquet:"retriever"`
	TopK         int       `parquet:"top_k"`
	ResultCount  int       `parquet:"result_count"`
	Model        string    `parquet:"model"`
	PromptTokens int       `parquet:"prompt_tokens"`
	OutputTokens int       `parquet:"output_tokens"`
	DurationMS   int64     `parquet:"duration_ms"`
	Error        string    `parquet:"error"`
}

// Recorder buffers query records and writes them to Parquet files in
// batches. Safe for concurrent use.
type Recorder struct {
	outputDir string
	batchSize int
	logger    *slog.Logger

	mu     sync.Mutex
	buffer []QueryRecord
}

// NewRecorder creates a recorder writing under outputDir. batchSize <= 0
// uses the default of 100.
func NewRecorder(outputDir string, batchSize int, logger *slog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		outputDir: outputDir,
		batchSize: batchSize,
		logger:    logger,
		buffer:    make([]QueryRecord, 0, batchSize),
	}, nil
}

// Record buffers one event, filling in ID and timestamp when unset, and
// flushes when the batch is full.
func (r *Recorder) Record(record QueryRecord) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, record)
	if len(r.buffer) >= r.batchSize {
		if err := r.flush(); err != nil {
			r.logger.Warn("telemetry flush failed", "error", err)
		}
	}
}

// Flush writes any buffered records to a new Parquet file.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// flush writes the buffer. Caller must hold the lock.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	name := fmt.Sprintf("queries_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, name)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return fmt.Errorf("write telemetry file: %w", err)
	}

	r.buffer = r.buffer[:0]
	return nil
}

// Close flushes remaining records.
func (r *Recorder) Close() error {
	return r.Flush()
}
