package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"

	"plp-bookstore/configs"
)

// RootOptions holds global flags and the loaded configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	MongoURI   string
	Database   string
	Collection string

	Config configs.Config
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookstore",
		Short: "plp_bookstore query catalog",
		Long: `Runs the plp_bookstore query catalog against MongoDB.

Filtering, projection, sorting, pagination, aggregation and index
statements can be run one by one, as a whole, or served over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := configs.LoadConfig()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			if cmd.Flags().Changed("mongo-uri") {
				cfg.MongoURI = opts.MongoURI
			}
			if cmd.Flags().Changed("db") {
				cfg.DBName = opts.Database
			}
			if cmd.Flags().Changed("collection") {
				cfg.BooksCollection = opts.Collection
			}
			opts.Config = cfg

			zap.ReplaceGlobals(newLogger(cfg.LogLevel, opts.Verbose))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.MongoURI, "mongo-uri", "", "MongoDB connection string (overrides MONGO_URI)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database name (overrides DB_NAME)")
	cmd.PersistentFlags().StringVar(&opts.Collection, "collection", "", "books collection (overrides BOOKS_COLLECTION)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewIndexesCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))

	return cmd
}

// newLogger logs ECS JSON to stderr so command output on stdout stays clean.
func newLogger(level string, verbose bool) *zap.Logger {
	encoderConfig := ecszap.NewDefaultEncoderConfig()
	lvl := zap.InfoLevel
	if verbose || level == "DEVELOPMENT" {
		lvl = zap.DebugLevel
	}
	core := ecszap.NewCore(encoderConfig, os.Stderr, lvl)
	return zap.New(core, zap.AddCaller())
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format: o.Format,
		Writer: cmd.OutOrStdout(),
	}
}
