package cli

import (
	"github.com/spf13/cobra"

	"plp-bookstore/internal/catalog"
)

type ExplainOptions struct {
	*RootOptions
	Title     string
	Verbosity string
	Raw       bool
}

func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a find by title",
		Long: `Explain find({title}) and summarise the winning plan.

Example:
  bookstore explain --title "The Hobbit"
  bookstore explain --title "The Hobbit" --verbosity queryPlanner --raw --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "The Hobbit", "title to look up")
	cmd.Flags().StringVar(&opts.Verbosity, "verbosity", catalog.VerbosityExecutionStats, "queryPlanner|executionStats|allPlansExecution")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print the full explain document")

	return cmd
}

func runExplain(cmd *cobra.Command, opts *ExplainOptions) error {
	if !catalog.IsValidVerbosity(opts.Verbosity) {
		return NewExitError(ExitCommandError, "invalid --verbosity "+opts.Verbosity)
	}

	s, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := withRequestTimeout(cmd.Context(), opts.Config.RequestTimeout)
	defer cancel()

	raw, summary, err := s.catalog.ExplainFindByTitle(ctx, opts.Title, opts.Verbosity)
	if err != nil {
		return WrapExitError(ExitFailure, "explain failed", err)
	}

	out := opts.formatter(cmd)
	if opts.Raw {
		return out.Success(map[string]any{"summary": summary, "plan": raw})
	}
	return out.Success(summary)
}
