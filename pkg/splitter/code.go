package splitter

import "fmt"

// Language identifies a programming language for code-aware splitting.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangMarkdown   Language = "markdown"
)

// CodeSeparators returns the separator priority list for a language, so the
// recursive splitter prefers breaking between declarations over breaking
// inside them.
func CodeSeparators(lang Language) ([]string, error) {
	switch lang {
	case LangGo:
		return []string{
			"\nfunc ", "\ntype ", "\nvar ", "\nconst ",
			"\n\n", "\n", " ", "",
		}, nil
	case LangPython:
		return []string{
			"\nclass ", "\ndef ", "\n\tdef ",
			"\n\n", "\n", " ", "",
		}, nil
	case LangJavaScript:
		return []string{
			"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
			"\n\n", "\n", " ", "",
		}, nil
	case LangJava:
		return []string{
			"\nclass ", "\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
			"\n\n", "\n", " ", "",
		}, nil
	case LangMarkdown:
		return []string{
			"\n## ", "\n### ", "\n#### ",
			"\n\n", "\n", " ", "",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// NewCodeSplitter builds a recursive splitter with language-specific separators.
func NewCodeSplitter(lang Language, opts ...RecursiveSplitterOption) (*RecursiveSplitter, error) {
	separators, err := CodeSeparators(lang)
	if err != nil {
		return nil, err
	}
	opts = append([]RecursiveSplitterOption{WithSeparators(separators)}, opts...)
	return NewRecursiveSplitter(opts...), nil
}
