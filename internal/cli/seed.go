package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/seed"
	"plp-bookstore/internal/utils"
)

type SeedOptions struct {
	*RootOptions
	File string
	Drop bool
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load books into the collection",
		Long: `Load a YAML dataset into the books collection. Without --file the
embedded 15 book dataset is used.

Example:
  bookstore seed --drop
  bookstore seed --file ./books.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "seed file (overrides SEED_FILE)")
	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "drop the collection before inserting")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	path := opts.File
	if path == "" {
		path = opts.Config.SeedFile
	}
	books, err := seed.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid seed file", err)
	}

	ctx := utils.WithUserID(cmd.Context(), cliUser)
	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	n, err := seed.Insert(ctx, s.books, books, opts.Drop)
	if err != nil {
		return WrapExitError(ExitFailure, "seeding failed", err)
	}
	_ = s.logger.Log(ctx, models.BookEntity, constants.Seed, map[string]any{"inserted": n, "dropped": opts.Drop})

	return opts.formatter(cmd).Success(fmt.Sprintf("inserted %d books into %s.%s", n, opts.Config.DBName, opts.Config.BooksCollection))
}
