package ragcli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/config"
	"github.com/yilane/rag-related/pkg/icd10"
	"github.com/yilane/rag-related/pkg/ner"
	"github.com/yilane/rag-related/pkg/server"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

var (
	serveHost     string
	servePort     int
	serveMode     string
	serveICD10CSV string
	servePaths    []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve starts the HTTP server exposing document indexing, search, and
question answering, plus the ICD-10 disease code search when --icd10-csv
points at the code table.

Endpoints:
- GET  /health, /live, /health/detailed
- POST /api/v1/documents, /api/v1/search, /api/v1/answer
- POST /api/v1/icd10/search, GET /api/v1/icd10/codes/:code`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (overrides config)")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "gin mode: debug, release, test")
	serveCmd.Flags().StringVar(&serveICD10CSV, "icd10-csv", "", "ICD-10 code table to index for disease search")
	serveCmd.Flags().StringSliceVarP(&servePaths, "path", "p", nil, "documents to index on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serveMode
	}

	client, err := buildRAG(ctx, cfg, log, false, false)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, path := range servePaths {
		stats, err := client.IndexFrom(ctx, loaderFor(path))
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		log.Info("indexed on startup", "path", path, "chunks", stats.Chunks)
	}

	var icd10Service *icd10.Service
	if serveICD10CSV != "" {
		icd10Service, err = buildICD10(ctx, cfg, log)
		if err != nil {
			return err
		}
	}

	srv := server.New(cfg, client, icd10Service)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Info("server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}

// buildICD10 reads the code table, embeds it into its own flat index, and
// wires the NER-assisted search service. NER is best effort: when the model
// cannot load, search falls back to the plain query.
func buildICD10(ctx context.Context, cfg *config.Config, log *slog.Logger) (*icd10.Service, error) {
	f, err := os.Open(serveICD10CSV)
	if err != nil {
		return nil, fmt.Errorf("open icd10 csv: %w", err)
	}
	defer f.Close()

	records, err := icd10.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read icd10 csv: %w", err)
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	if err != nil {
		return nil, err
	}

	indexed, err := icd10.NewBuilder(emb, store, 0, log).Build(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("build icd10 index: %w", err)
	}
	log.Info("icd10 index ready", "records", indexed)

	var recognizer ner.Recognizer
	modelID := cfg.NER.ModelPath
	if modelID == "" {
		modelID = cfg.NER.ModelID
	}
	if modelID != "" {
		recognizer, err = ner.NewGlineRecognizer(modelID, cfg.NER.Threshold)
		if err != nil {
			log.Warn("ner model unavailable, searching without entity expansion", "error", err)
			recognizer = nil
		}
	}

	return icd10.NewService(emb, store, recognizer, records, cfg.NER.Labels, log), nil
}
