// Package ner wraps the gline span model for named entity recognition over
// user queries, used by the ICD-10 search service to pull out disease,
// symptom, and drug mentions.
package ner

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundprediction/go-gline-rs/pkg/gline"

	"github.com/yilane/rag-related/pkg/types"
)

// Recognizer extracts labeled entities from text.
type Recognizer interface {
	Extract(text string, labels []string) ([]types.Entity, error)
	Close() error
}

// GlineRecognizer runs a gline span model. Predict is not reentrant, hence
// the mutex.
type GlineRecognizer struct {
	model     *gline.Model
	threshold float64
	mu        sync.Mutex
}

// NewGlineRecognizer loads a span model from a local directory (expecting
// model.onnx and tokenizer.json) or a HuggingFace model ID.
func NewGlineRecognizer(modelID string, threshold float64) (*GlineRecognizer, error) {
	if err := gline.Init(); err != nil {
		return nil, fmt.Errorf("init gline: %w", err)
	}

	var model *gline.Model
	var err error
	if _, statErr := os.Stat(modelID); statErr == nil {
		modelPath := filepath.Join(modelID, "model.onnx")
		tokPath := filepath.Join(modelID, "tokenizer.json")
		model, err = gline.NewSpanModel(modelPath, tokPath)
	} else {
		model, err = gline.NewSpanModelFromHF(modelID)
	}
	if err != nil {
		return nil, fmt.Errorf("load span model %s: %w", modelID, err)
	}

	return &GlineRecognizer{model: model, threshold: threshold}, nil
}

// Extract returns entities above the configured score threshold.
func (g *GlineRecognizer) Extract(text string, labels []string) ([]types.Entity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	results, err := g.model.Predict([]string{text}, labels)
	if err != nil {
		return nil, fmt.Errorf("predict entities: %w", err)
	}
	if len(results) == 0 {
		return []types.Entity{}, nil
	}

	var entities []types.Entity
	for _, e := range results[0] {
		if float64(e.Probability) < g.threshold {
			continue
		}
		entities = append(entities, types.Entity{
			Text:  e.Text,
			Label: e.Label,
			Score: float64(e.Probability),
		})
	}
	return entities, nil
}

// Close releases the model.
func (g *GlineRecognizer) Close() error {
	g.model.Close()
	return nil
}

// MockRecognizer returns scripted entities, for tests. Calls records the
// candidate label set of every Extract call.
type MockRecognizer struct {
	Entities []types.Entity
	Err      error
	Calls    [][]string
}

// Extract implements Recognizer.
func (m *MockRecognizer) Extract(_ string, labels []string) ([]types.Entity, error) {
	m.Calls = append(m.Calls, labels)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entities, nil
}

// Close implements Recognizer.
func (m *MockRecognizer) Close() error { return nil }
