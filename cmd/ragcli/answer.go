package ragcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/types"
)

var (
	answerPaths   []string
	answerTopK    int
	answerHybrid  bool
	answerRerank  bool
	answerSources bool
)

var answerCmd = &cobra.Command{
	Use:   "answer <question>",
	Short: "Answer a question over the indexed documents",
	Long: `Answer indexes the documents under --path, retrieves the chunks most
relevant to the question, and generates a grounded answer with the
configured chat model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswer,
}

func init() {
	rootCmd.AddCommand(answerCmd)
	answerCmd.Flags().StringSliceVarP(&answerPaths, "path", "p", nil, "file or directory to index before answering")
	answerCmd.Flags().IntVarP(&answerTopK, "top-k", "k", 0, "number of context chunks (default from config)")
	answerCmd.Flags().BoolVar(&answerHybrid, "hybrid", false, "fuse BM25 and dense retrieval")
	answerCmd.Flags().BoolVar(&answerRerank, "rerank", false, "rerank context chunks with the chat model")
	answerCmd.Flags().BoolVar(&answerSources, "sources", false, "print the retrieved sources")
}

func runAnswer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := buildRAG(ctx, cfg, log, answerHybrid, answerRerank)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, path := range answerPaths {
		if _, err := client.IndexFrom(ctx, loaderFor(path)); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
	}

	topK := answerTopK
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}
	answer, err := client.Answer(ctx, question, &types.SearchConfig{
		TopK:     topK,
		MinScore: cfg.Retrieval.MinScore,
	})
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if answerSources {
		fmt.Println()
		for i, source := range answer.Sources {
			fmt.Printf("[%d] %.4f %s\n", i+1, source.Score, snippet(source.Chunk.Content, 120))
		}
	}
	return nil
}
