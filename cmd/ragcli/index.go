package ragcli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/loader"
)

var indexRecursive bool

var indexCmd = &cobra.Command{
	Use:   "index <path>...",
	Short: "Load, split, embed, and store documents",
	Long: `Index loads each path (a file or a directory of markdown/text files),
splits the documents into chunks, embeds them, and inserts them into the
configured vector store.

With the in-memory store the index lives only for the duration of the
process; point vector_store.provider at qdrant to persist it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&indexRecursive, "recursive", "r", true, "recurse into subdirectories")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := buildRAG(ctx, cfg, log, false, false)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, path := range args {
		stats, err := client.IndexFrom(ctx, loaderFor(path))
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		fmt.Printf("%s: %d documents, %d chunks in %s\n", path, stats.Documents, stats.Chunks, stats.Elapsed)
	}
	return nil
}

// loaderFor picks a loader by source type: URL, PDF, directory, or file.
func loaderFor(path string) loader.Loader {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return loader.NewWebLoader(path)
	case strings.HasSuffix(strings.ToLower(path), ".pdf"):
		return loader.NewPDFLoader(path)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return loader.NewDirectoryLoader(path, nil, indexRecursive)
	}
	return loader.NewTextLoader(path)
}
