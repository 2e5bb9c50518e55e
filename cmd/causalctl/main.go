package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"causalgate/adapters/excel"
	"causalgate/domain/hypothesis"
	"causalgate/domain/verdict"
	"causalgate/internal/api"
	"causalgate/internal/config"
	"causalgate/internal/container"
	"causalgate/internal/mechanism"
	"causalgate/internal/migration"
	"causalgate/internal/oracle"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var templatePath string

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:          "causalctl",
		Short:        "Causal graph reasoning and hypothesis governance",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", os.Getenv("TEMPLATE_FILE"), "Domain template (YAML or JSON) to hydrate the graph from")

	rootCmd.AddCommand(
		newQueryCmd(),
		newGateCmd(),
		newScoreCmd(),
		newOracleCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildContainer loads config and wires every component
func buildContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx, templatePath); err != nil {
		return nil, err
	}
	return c, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseValues turns name=value pairs into a map
func parseValues(pairs []string) (map[string]float64, error) {
	values := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", p)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		values[strings.TrimSpace(name)] = v
	}
	return values, nil
}

func newQueryCmd() *cobra.Command {
	var set, adjust, known, given []string

	cmd := &cobra.Command{
		Use:   "query [association|intervention|counterfactual|identify|dseparate] [args...]",
		Short: "Run a causal query against the hydrated graph",
		Long: `Run a causal query against the graph hydrated from --template.

Examples:
  causalctl query association Rain Yield --set Rain=2
  causalctl query intervention Irrigation 1 Yield --set Yield=10
  causalctl query counterfactual Pesticide 1 Yield --set Pesticide=0
  causalctl query identify Treatment Outcome --adjust Confounder --known SES
  causalctl query dseparate Irrigation Yield --given "Soil Moisture"`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			values, err := parseValues(set)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch args[0] {
			case "association":
				r, err := c.Graph.QueryAssociation(args[1], args[2], values)
				if err != nil {
					return err
				}
				return printJSON(out, r)
			case "intervention", "counterfactual":
				if len(args) != 4 {
					return fmt.Errorf("%s needs VARIABLE VALUE OUTCOME", args[0])
				}
				value, err := strconv.ParseFloat(args[2], 64)
				if err != nil {
					return fmt.Errorf("invalid value: %w", err)
				}
				if args[0] == "intervention" {
					r, err := c.Graph.QueryIntervention(args[1], value, args[3], values)
					if err != nil {
						return err
					}
					return printJSON(out, r)
				}
				r, err := c.Graph.QueryCounterfactual(args[1], value, args[3], values)
				if err != nil {
					return err
				}
				return printJSON(out, r)
			case "identify":
				return printJSON(out, c.Graph.CheckIdentifiability(args[1], args[2], adjust, known))
			case "dseparate":
				return printJSON(out, c.Graph.CheckDSeparation(args[1], args[2], given))
			default:
				return fmt.Errorf("unknown query %q", args[0])
			}
		},
	}

	cmd.Flags().StringSliceVar(&set, "set", nil, "Observed or baseline values as name=value")
	cmd.Flags().StringSliceVar(&adjust, "adjust", nil, "Adjustment set for identify")
	cmd.Flags().StringSliceVar(&known, "known", nil, "Known confounders for identify")
	cmd.Flags().StringSliceVar(&given, "given", nil, "Conditioning set for dseparate")

	return cmd
}

func newGateCmd() *cobra.Command {
	var checkpoint, domain string
	var all bool

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Run the mechanism constraint gate over text read from stdin",
		Long: `Run the mechanism constraint gate over text read from stdin.

Exits non-zero when the text is blocked. With --all the text runs through
every checkpoint in pipeline order.

Example: echo "the effect precedes cause" | causalctl gate --checkpoint pre_release --domain ecology`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			d := c.Domain()
			if domain != "" {
				d = mechanism.Domain(domain)
			}

			var results []mechanism.Result
			if all {
				results, err = c.Mechanism.EvaluateAll(cmd.Context(), string(text), d)
			} else {
				var r mechanism.Result
				r, err = c.Mechanism.Evaluate(cmd.Context(), mechanism.Request{
					Text: string(text), Checkpoint: verdict.Checkpoint(checkpoint), Domain: d,
				})
				results = []mechanism.Result{r}
			}
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			for _, r := range results {
				if r.Blocked() {
					return fmt.Errorf("blocked at %s: %d fatal, %d warning", r.Checkpoint, r.FatalCount, r.WarningCount)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&checkpoint, "checkpoint", string(verdict.CheckpointPreRelease), "pre_synthesis, post_synthesis or pre_release")
	cmd.Flags().StringVar(&domain, "domain", "", "Tier 2 domain: ecology, cognitive_psychology or selfish_gene")
	cmd.Flags().BoolVar(&all, "all", false, "Evaluate at every checkpoint")

	return cmd
}

func newScoreCmd() *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "score [hypotheses.json]",
		Short: "Score a batch of hypotheses for novelty and gate the batch",
		Long: `Score a JSON array of hypotheses against the template's prior art and
contradiction matrix, then print the proofs and the batch decision.

Example: causalctl score ideas.json --template agronomy.yaml --xlsx proofs.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var hs []hypothesis.Hypothesis
			if err := json.Unmarshal(data, &hs); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			result := c.NoveltyScorer().ScoreBatch(cmd.Context(), hs)
			if xlsxPath != "" {
				if err := excel.WriteNoveltyProofs(xlsxPath, result.Proofs); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write proofs to this XLSX file")

	return cmd
}

func newOracleCmd() *cobra.Command {
	var htmlPath, xlsxPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Run the compliance oracle suite",
		Long: `Run every deterministic oracle scenario family and print a Markdown report.
Exits non-zero if any family falls below its threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c, err := container.New(cfg)
			if err != nil {
				return err
			}

			report := oracle.Run(c.Logger)
			if asJSON {
				err = printJSON(cmd.OutOrStdout(), report)
			} else {
				_, err = fmt.Fprint(cmd.OutOrStdout(), report.Markdown())
			}
			if err != nil {
				return err
			}
			if htmlPath != "" {
				if err := os.WriteFile(htmlPath, report.HTML(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", htmlPath, err)
				}
			}
			if xlsxPath != "" {
				if err := excel.WriteOracleReport(xlsxPath, report); err != nil {
					return err
				}
			}
			if !report.Passed {
				return fmt.Errorf("oracle suite failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "Write the report as HTML to this file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the report as XLSX to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of Markdown")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			gin.SetMode(c.Config.Server.GinMode)
			server := api.NewServer(c.APIDeps())
			return server.Run(cmd.Context(), ":"+c.Config.Server.Port)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the verdict ledger schema in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Ledger.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			db, err := sqlx.Connect("postgres", cfg.Ledger.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			runner := migration.NewRunner()
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			log.Printf("Migrations applied (version %s)", runner.Version())
			return nil
		},
	}
}
