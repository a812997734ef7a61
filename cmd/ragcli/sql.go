package ragcli

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/yilane/rag-related/pkg/sqlgen"
)

var (
	sqlDBPath   string
	sqlSeedDemo bool
)

var sqlCmd = &cobra.Command{
	Use:   "sql [question]...",
	Short: "Convert questions to SQL and run them against SQLite",
	Long: `Sql introspects the database schema, converts each natural-language
question into a SELECT statement with the chat model, validates it, runs
it, and prints the results.

With question arguments it runs in batch mode; without, it reads questions
interactively from stdin. --seed fills the database with a small sales
demo dataset first.`,
	RunE: runSQL,
}

func init() {
	rootCmd.AddCommand(sqlCmd)
	sqlCmd.Flags().StringVar(&sqlDBPath, "db", "ragcli.db", "path to the SQLite database")
	sqlCmd.Flags().BoolVar(&sqlSeedDemo, "seed", false, "seed the demo sales dataset before querying")
}

func runSQL(cmd *cobra.Command, args []string) error {
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

	db, err := sql.Open("sqlite3", sqlDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if sqlSeedDemo {
		if err := sqlgen.SeedDatabase(ctx, db); err != nil {
			return err
		}
		fmt.Println("seeded demo sales database")
	}

	schema, err := sqlgen.IntrospectSchema(ctx, db)
	if err != nil {
		return fmt.Errorf("introspect schema: %w", err)
	}
	log.Debug("database schema", "schema", schema.Describe())

	service := sqlgen.NewService(sqlgen.NewConverter(llm, schema, log), db, log)

	ask := func(question string) {
		result, err := service.Query(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", question, err)
			return
		}
		fmt.Printf("Q: %s\nSQL: %s\n%s\n", result.Question, result.SQL, result.Format())
	}

	if len(args) > 0 {
		for _, question := range args {
			ask(question)
		}
		return nil
	}

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
		ask(question)
	}
	return scanner.Err()
}
