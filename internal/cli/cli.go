package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtgtop8-sync/internal/app"
	"github.com/pfrederiksen/mtgtop8-sync/internal/pipeline"
	"github.com/pfrederiksen/mtgtop8-sync/internal/review"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

var (
	flagConfig    string
	flagDB        string
	flagRules     string
	flagExportDir string
	flagFormat    string
	flagNotify    string
	flagDryRun    bool
	flagVerbose   bool

	flagRunCards    bool
	flagRunAssemble bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mtgtop8-sync",
		Short: "Incrementally sync mtgtop8 tournament results",
		Long: `A CLI tool that keeps a local database of mtgtop8 tournament results.
Each run fetches only events, decks and deck lists not stored yet, then
optionally assembles and exports one flat table for analysis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (YAML); defaults, .env and MTGSYNC_ variables are always read")
	pf.StringVar(&flagDB, "db", "", "SQLite database path (overrides db_path)")
	pf.StringVar(&flagRules, "rules", "", "Curation rules file (overrides rules_path)")
	pf.StringVar(&flagExportDir, "export-dir", "", "Directory for exported CSV files (overrides export_dir)")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text or json")
	pf.StringVar(&flagNotify, "notify", "", "Announce new events: dryrun or twitter")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Fetch and parse but write nothing")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newSyncCmd(), newAssembleCmd(), newRunCmd(), newRulesCmd())
	return cmd
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync pass",
	}
	cmd.AddCommand(
		passCmd("events", "Store events not seen before", func(ctx context.Context, p *pipeline.Pipeline, res *pipeline.RunResult) (err error) {
			res.Events, err = p.SyncEvents(ctx, res.RunID)
			return err
		}),
		passCmd("decks", "Store decks of events without decks", func(ctx context.Context, p *pipeline.Pipeline, res *pipeline.RunResult) (err error) {
			res.Decks, err = p.SyncDecks(ctx, res.RunID, res.Review)
			return err
		}),
		passCmd("decklists", "Store card lines of decks without a list", func(ctx context.Context, p *pipeline.Pipeline, res *pipeline.RunResult) (err error) {
			res.DeckLists, err = p.SyncDeckLists(ctx, res.RunID, res.Review)
			return err
		}),
		passCmd("cards", "Store catalog cards of the configured sets", func(ctx context.Context, p *pipeline.Pipeline, res *pipeline.RunResult) (err error) {
			res.Cards, err = p.SyncCards(ctx, res.RunID)
			return err
		}),
	)
	return cmd
}

func newAssembleCmd() *cobra.Command {
	return passCmd("assemble", "Build, review and export the unified table", func(ctx context.Context, p *pipeline.Pipeline, res *pipeline.RunResult) (err error) {
		res.Assembled, err = p.Assemble(ctx, res.RunID, res.Review)
		return err
	})
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync events, decks and deck lists, then optionally cards and the export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.RunResult, error) {
				return p.Run(ctx, pipeline.RunOptions{
					SyncCards: flagRunCards,
					Assemble:  flagRunAssemble,
				})
			})
		},
	}
	cmd.Flags().BoolVar(&flagRunCards, "cards", false, "Also sync catalog cards")
	cmd.Flags().BoolVar(&flagRunAssemble, "assemble", true, "Assemble and export after syncing")
	return cmd
}

// passFunc runs one pass and records its outcome in res.
type passFunc func(ctx context.Context, p *pipeline.Pipeline, res *pipeline.RunResult) error

func passCmd(use, short string, pass passFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.RunResult, error) {
				res := newResult()
				err := pass(ctx, p, res)
				res.Duration = time.Since(res.StartedAt)
				return res, err
			})
		},
	}
}

func newResult() *pipeline.RunResult {
	runID := pipeline.NewRunID()
	return &pipeline.RunResult{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		DryRun:    flagDryRun,
		Review:    review.New(runID),
	}
}

// exitCode is set by a successful command and returned by Execute.
var exitCode = ExitSuccess

// execute builds the app from the persistent flags, runs fn and writes its result.
// A partial result is still written when fn fails.
func execute(cmd *cobra.Command, fn func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.RunResult, error)) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides := app.Overrides{
		ConfigPath: flagConfig,
		DBPath:     flagDB,
		RulesPath:  flagRules,
		ExportDir:  flagExportDir,
		Notify:     flagNotify,
		DryRun:     flagDryRun,
		Verbose:    flagVerbose,
	}

	var result *pipeline.RunResult
	err := app.Run(ctx, overrides, func(ctx context.Context, p *pipeline.Pipeline) error {
		var runErr error
		result, runErr = fn(ctx, p)
		return runErr
	})

	if result != nil {
		if werr := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); werr != nil && err == nil {
			err = fmt.Errorf("writing output: %w", werr)
		}
	}
	if err != nil {
		return err
	}

	if result.NewEvents() > 0 {
		exitCode = ExitNewEvents
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(exitCode)
}
