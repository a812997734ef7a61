package splitter

import "strings"

// CharacterSplitter splits text into fixed-size windows, optionally packing
// separator-delimited pieces up to the chunk size first.
type CharacterSplitter struct {
	separator    string
	chunkSize    int
	chunkOverlap int
	lengthFunc   func(string) int
}

// CharacterSplitterOption configures the CharacterSplitter.
type CharacterSplitterOption func(*CharacterSplitter)

// WithCharacterSeparator sets the separator; empty means raw windows.
func WithCharacterSeparator(separator string) CharacterSplitterOption {
	return func(s *CharacterSplitter) {
		s.separator = separator
	}
}

// WithCharacterChunkSize sets the chunk size.
func WithCharacterChunkSize(size int) CharacterSplitterOption {
	return func(s *CharacterSplitter) {
		s.chunkSize = size
	}
}

// WithCharacterChunkOverlap sets the chunk overlap.
func WithCharacterChunkOverlap(overlap int) CharacterSplitterOption {
	return func(s *CharacterSplitter) {
		s.chunkOverlap = overlap
	}
}

// NewCharacterSplitter creates a new CharacterSplitter.
func NewCharacterSplitter(opts ...CharacterSplitterOption) *CharacterSplitter {
	s := &CharacterSplitter{
		separator:    "\n",
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

// SplitText splits text into chunks by separator or character count.
func (s *CharacterSplitter) SplitText(text string) []string {
	if s.separator != "" {
		return s.splitBySeparator(text)
	}
	return s.splitByCharacterCount(text)
}

func (s *CharacterSplitter) splitBySeparator(text string) []string {
	splits := strings.Split(text, s.separator)
	var chunks []string
	var current string

	for _, split := range splits {
		if s.lengthFunc(current)+s.lengthFunc(split)+s.lengthFunc(s.separator) <= s.chunkSize {
			if current != "" {
				current += s.separator + split
			} else {
				current = split
			}
		} else {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = split
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

func (s *CharacterSplitter) splitByCharacterCount(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}
