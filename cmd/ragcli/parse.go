package ragcli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/loader"
)

var (
	parseOutDir    string
	parseBenchmark bool
	parseCSV       string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file-or-url>...",
	Short: "Extract text from files, PDFs, or web pages into markdown",
	Long: `Parse reads each source (a text file, a PDF, or an http/https URL),
extracts its text, and writes one markdown file per document into the
output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseOutDir, "out", "o", "output", "output directory for markdown files")
	parseCmd.Flags().BoolVar(&parseBenchmark, "benchmark", false, "time each source instead of writing markdown")
	parseCmd.Flags().StringVar(&parseCSV, "csv", "", "with --benchmark, also write results to this CSV file")
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if parseBenchmark {
		loaders := make([]loader.NamedLoader, len(args))
		for i, source := range args {
			loaders[i] = loader.NamedLoader{Name: source, Loader: parserFor(source)}
		}
		results := loader.Benchmark(ctx, loaders)
		fmt.Print(loader.FormatBenchmarkTable(results))
		if parseCSV != "" {
			f, err := os.Create(parseCSV)
			if err != nil {
				return fmt.Errorf("create %s: %w", parseCSV, err)
			}
			defer f.Close()
			if err := loader.WriteBenchmarkCSV(f, results); err != nil {
				return fmt.Errorf("write %s: %w", parseCSV, err)
			}
		}
		return nil
	}

	for _, source := range args {
		docs, err := parserFor(source).Load(ctx)
		if err != nil {
			return fmt.Errorf("parse %s: %w", source, err)
		}

		for _, doc := range docs {
			path, err := loader.WriteMarkdown(doc, parseOutDir)
			if err != nil {
				return fmt.Errorf("write %s: %w", source, err)
			}
			fmt.Printf("%s -> %s (%d chars)\n", source, path, len([]rune(doc.Content)))
		}
	}
	return nil
}

// parserFor picks a loader by source type.
func parserFor(source string) loader.Loader {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return loader.NewWebLoader(source)
	case strings.HasSuffix(strings.ToLower(source), ".pdf"):
		return loader.NewPDFLoader(source)
	default:
		return loader.NewTextLoader(source)
	}
}
