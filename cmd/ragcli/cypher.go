package ragcli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/cypher"
)

var (
	cypherSeed     bool
	cypherShowOnly bool
)

var cypherCmd = &cobra.Command{
	Use:   "cypher [question]...",
	Short: "Convert questions to Cypher and run them against Neo4j",
	Long: `Cypher introspects the graph schema, converts each natural-language
question into a read-only Cypher statement with the chat model, validates
it, runs it, and prints the results.

With question arguments it runs in batch mode; without, it reads questions
interactively from stdin. --seed writes a small medical demo graph first.`,
	RunE: runCypher,
}

func init() {
	rootCmd.AddCommand(cypherCmd)
	cypherCmd.Flags().BoolVar(&cypherSeed, "seed", false, "seed the demo disease graph before querying")
	cypherCmd.Flags().BoolVar(&cypherShowOnly, "show-only", false, "print generated statements without executing them")
}

func runCypher(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	llm, err := buildLLM(cfg, log)
	if err != nil {
		return err
	}
	defer llm.Close()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI,
		neo4j.BasicAuth(cfg.Neo4j.Username, cfg.Neo4j.Password, ""))
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer driver.Close(ctx)

	if cypherSeed {
		if err := cypher.SeedGraph(ctx, driver, cfg.Neo4j.Database, nil); err != nil {
			return err
		}
		fmt.Println("seeded demo disease graph")
	}

	schema, err := cypher.IntrospectSchema(ctx, driver, cfg.Neo4j.Database)
	if err != nil {
		return fmt.Errorf("introspect schema: %w", err)
	}
	log.Debug("graph schema", "schema", schema.Describe())

	converter := cypher.NewConverter(llm, schema, log)
	runner := cypher.NewRunner(driver, cfg.Neo4j.Database)
	service := cypher.NewService(converter, runner, log)

	if len(args) > 0 {
		return runCypherBatch(cmd, converter, service, args)
	}
	return runCypherInteractive(cmd, converter, runner)
}

func runCypherBatch(cmd *cobra.Command, converter *cypher.Converter, service *cypher.Service, questions []string) error {
	ctx := cmd.Context()

	for _, question := range questions {
		if cypherShowOnly {
			statement, err := converter.Convert(ctx, question)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", question, err)
				continue
			}
			fmt.Printf("Q: %s\n%s\n\n", question, statement)
			continue
		}

		result, err := service.Query(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", question, err)
			continue
		}
		fmt.Printf("Q: %s\nCypher: %s\n%s\n", result.Question, result.Cypher, cypher.FormatRecords(result.Records))
	}
	return nil
}

func runCypherInteractive(cmd *cobra.Command, converter *cypher.Converter, runner *cypher.Runner) error {
	ctx := cmd.Context()

	fmt.Println("Enter a question (empty line or 'exit' to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "exit" || question == "quit" {
			break
		}

		statement, err := converter.Convert(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("Cypher: %s\n", statement)
		if cypherShowOnly {
			continue
		}

		if err := runner.Validate(ctx, statement); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		records, err := runner.Run(ctx, statement)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(cypher.FormatRecords(records))
	}
	return scanner.Err()
}
