package ragcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/prequery"
	"github.com/yilane/rag-related/pkg/types"
)

var (
	translateMode  string
	translateN     int
	translatePaths []string
)

var translateCmd = &cobra.Command{
	Use:   "translate <query>",
	Short: "Rewrite a query before retrieval",
	Long: `Translate transforms a query with the chat model before retrieval.

Modes:
- rephrase   rewrite into a cleaner search query
- multi      expand into several alternative queries
- decompose  break into answerable sub-questions
- stepback   abstract into a more general question
- hyde       write a hypothetical answer document
- fusion     expand into multiple queries, retrieve each over the documents
             under --path, and fuse the result lists`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringVarP(&translateMode, "mode", "m", "rephrase", "rephrase, multi, decompose, stepback, hyde, or fusion")
	translateCmd.Flags().IntVarP(&translateN, "n", "n", 3, "number of queries for multi, decompose, and fusion")
	translateCmd.Flags().StringSliceVarP(&translatePaths, "path", "p", nil, "documents to index for fusion mode")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	llm, err := buildLLM(cfg, log)
	if err != nil {
		return err
	}
	defer llm.Close()

	translator := prequery.NewTranslator(llm)

	switch translateMode {
	case "rephrase":
		rewritten, err := translator.Rephrase(ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(rewritten)

	case "multi":
		queries, err := translator.MultiQuery(ctx, query, translateN)
		if err != nil {
			return err
		}
		for _, q := range queries {
			fmt.Println(q)
		}

	case "decompose":
		questions, err := translator.Decompose(ctx, query, translateN)
		if err != nil {
			return err
		}
		for i, q := range questions {
			fmt.Printf("%d. %s\n", i+1, q)
		}

	case "stepback":
		general, err := translator.StepBack(ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(general)

	case "hyde":
		doc, err := translator.HypotheticalDocument(ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(doc)

	case "fusion":
		client, err := buildRAG(ctx, cfg, log, false, false)
		if err != nil {
			return err
		}
		defer client.Close()

		for _, path := range translatePaths {
			if _, err := client.IndexFrom(ctx, loaderFor(path)); err != nil {
				return fmt.Errorf("index %s: %w", path, err)
			}
		}

		results, err := translator.Fusion(ctx, client, query, translateN, cfg.Retrieval.RRFK, &types.SearchConfig{
			TopK:     cfg.Retrieval.TopK,
			MinScore: cfg.Retrieval.MinScore,
		})
		if err != nil {
			return err
		}
		for i, result := range results {
			fmt.Printf("%2d. [%.4f] %s\n", i+1, result.Score, snippet(result.Chunk.Content, 120))
		}

	default:
		return fmt.Errorf("unknown mode %q", translateMode)
	}
	return nil
}
