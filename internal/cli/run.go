package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/seed"
	"plp-bookstore/internal/utils"
)

type RunOptions struct {
	*RootOptions
	Only    []string
	List    bool
	Reseed  bool
	Timeout time.Duration
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the query catalog",
		Long: `Run the catalog statements in order and print each result.

A failing statement is reported and the run goes on; the command exits
with status 1 when any statement failed.

Example:
  bookstore run
  bookstore run --only aggregation --only explain-the-hobbit
  bookstore run --reseed --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "statement names or sections to run")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list statements without running them")
	cmd.Flags().BoolVar(&opts.Reseed, "reseed", false, "drop and reload the seed dataset first")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per statement timeout (defaults to REQUEST_TIMEOUT)")

	return cmd
}

func runCatalog(cmd *cobra.Command, opts *RunOptions) error {
	out := opts.formatter(cmd)

	statements, err := catalog.Select(catalog.Statements(), opts.Only)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --only", err)
	}
	if opts.List {
		return listStatements(out, statements)
	}

	ctx := utils.WithUserID(cmd.Context(), cliUser)
	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	if opts.Reseed {
		books, err := seed.Load(opts.Config.SeedFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid seed file", err)
		}
		if _, err := seed.Insert(ctx, s.books, books, true); err != nil {
			return WrapExitError(ExitFailure, "seeding failed", err)
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = opts.Config.RequestTimeout
	}
	runner := &catalog.Runner{Catalog: s.catalog, Timeout: timeout}

	var failed int
	err = runner.Run(ctx, statements, func(res catalog.Result) {
		if res.Err != nil {
			failed++
		}
		_ = out.Result(res)
	})
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d of %d statements failed", failed, len(statements)), err)
	}
	return nil
}

func listStatements(out *OutputFormatter, statements []catalog.Statement) error {
	if out.Format == "json" {
		type entry struct {
			Name        string `json:"name"`
			Section     string `json:"section"`
			Description string `json:"description"`
		}
		entries := make([]entry, 0, len(statements))
		for _, s := range statements {
			entries = append(entries, entry{s.Name, s.Section, s.Description})
		}
		return out.Success(entries)
	}
	for _, s := range statements {
		if _, err := fmt.Fprintf(out.Writer, "%-12s %-28s %s\n", s.Section, s.Name, s.Description); err != nil {
			return err
		}
	}
	return nil
}
