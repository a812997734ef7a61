package ragcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/types"
)

var (
	searchPaths  []string
	searchTopK   int
	searchHybrid bool
	searchRerank bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve the chunks most relevant to a query",
	Long: `Search indexes the documents under --path and prints the chunks most
relevant to the query, best first. --hybrid fuses BM25 and dense results
with reciprocal-rank fusion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringSliceVarP(&searchPaths, "path", "p", nil, "file or directory to index before searching")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchHybrid, "hybrid", false, "fuse BM25 and dense retrieval")
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "rerank results with the chat model")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := buildRAG(ctx, cfg, log, searchHybrid, searchRerank)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, path := range searchPaths {
		if _, err := client.IndexFrom(ctx, loaderFor(path)); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
	}

	topK := searchTopK
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}
	results, err := client.Retrieve(ctx, query, &types.SearchConfig{
		TopK:     topK,
		MinScore: cfg.Retrieval.MinScore,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%2d. [%.4f] %s\n", i+1, result.Score, snippet(result.Chunk.Content, 120))
		if source, ok := result.Chunk.Metadata["source"].(string); ok {
			fmt.Printf("    source: %s\n", source)
		}
	}
	return nil
}

// snippet truncates text to n runes on one line.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
