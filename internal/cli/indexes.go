package cli

import (
	"github.com/spf13/cobra"

	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/utils"
)

type IndexesOptions struct {
	*RootOptions
	Create bool
}

func NewIndexesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "List or create the catalog indexes",
		Long: `List the indexes on the books collection. With --create the title and
author/published_year indexes are created first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexes(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Create, "create", false, "create title_1 and author_1_published_year_-1")

	return cmd
}

func runIndexes(cmd *cobra.Command, opts *IndexesOptions) error {
	ctx := utils.WithUserID(cmd.Context(), cliUser)
	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := withRequestTimeout(ctx, opts.Config.RequestTimeout)
	defer cancel()

	if opts.Create {
		names, err := s.catalog.EnsureIndexes(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "index creation failed", err)
		}
		_ = s.logger.Log(ctx, models.IndexEntity, constants.CreateIndex, names)
	}

	names, err := s.catalog.ListIndexes(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "listing indexes failed", err)
	}
	return opts.formatter(cmd).Success(names)
}
