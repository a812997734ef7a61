package splitter

import "strings"

// RecursiveSplitter recursively splits text on a priority-ordered separator
// list, keeping semantically related pieces together where possible.
type RecursiveSplitter struct {
	separators   []string
	chunkSize    int
	chunkOverlap int
	lengthFunc   func(string) int
}

// RecursiveSplitterOption configures the RecursiveSplitter.
type RecursiveSplitterOption func(*RecursiveSplitter)

// WithChunkSize sets the chunk size.
func WithChunkSize(size int) RecursiveSplitterOption {
	return func(s *RecursiveSplitter) {
		s.chunkSize = size
	}
}

// WithChunkOverlap sets the chunk overlap.
func WithChunkOverlap(overlap int) RecursiveSplitterOption {
	return func(s *RecursiveSplitter) {
		s.chunkOverlap = overlap
	}
}

// WithSeparators sets custom separators in priority order.
func WithSeparators(separators []string) RecursiveSplitterOption {
	return func(s *RecursiveSplitter) {
		s.separators = separators
	}
}

// DefaultSeparators works for mixed Chinese/English prose: paragraph, line,
// CJK sentence enders, then space and character fallback.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", "。", "！", "？", ". ", " ", ""}
}

// NewRecursiveSplitter creates a new RecursiveSplitter.
func NewRecursiveSplitter(opts ...RecursiveSplitterOption) *RecursiveSplitter {
	s := &RecursiveSplitter{
		separators:   DefaultSeparators(),
		chunkSize:    1000,
		chunkOverlap: 200,
		lengthFunc:   runeLen,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize / 2
	}

	return s
}

// SplitText splits text into chunks.
func (s *RecursiveSplitter) SplitText(text string) []string {
	return s.splitRecursive(text, s.separators)
}

func (s *RecursiveSplitter) splitRecursive(text string, separators []string) []string {
	if s.lengthFunc(text) <= s.chunkSize {
		return []string{text}
	}

	if len(separators) == 0 {
		return s.splitByCharacter(text)
	}

	separator := separators[0]
	remaining := separators[1:]

	var splits []string
	if separator == "" {
		splits = s.splitByCharacter(text)
	} else {
		splits = strings.Split(text, separator)
	}

	var good []string
	for _, split := range splits {
		if strings.TrimSpace(split) == "" {
			continue
		}
		if s.lengthFunc(split) <= s.chunkSize {
			good = append(good, split)
		} else {
			good = append(good, s.splitRecursive(split, remaining)...)
		}
	}

	return s.mergeSplits(good, separator)
}

func (s *RecursiveSplitter) splitByCharacter(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	if step <= 0 {
		step = s.chunkSize
	}

	var splits []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		splits = append(splits, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}

	return splits
}

// mergeSplits packs adjacent splits back together up to the chunk size.
func (s *RecursiveSplitter) mergeSplits(splits []string, separator string) []string {
	joiner := separator
	if joiner == "" {
		joiner = " "
	}

	var merged []string
	var current string

	for _, split := range splits {
		if current == "" {
			current = split
			continue
		}

		proposed := current + joiner + split
		if s.lengthFunc(proposed) <= s.chunkSize {
			current = proposed
		} else {
			merged = append(merged, current)
			current = split
		}
	}

	if current != "" {
		merged = append(merged, current)
	}

	return merged
}
